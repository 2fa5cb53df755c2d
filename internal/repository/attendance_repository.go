package repository

import (
	"context"
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"gorm.io/gorm"
)

// GormAttendanceRepository is a GORM implementation of AttendanceRepository
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// FindByUserAndDate finds the record of one user on one day
func (r *GormAttendanceRepository) FindByUserAndDate(ctx context.Context, userID uint64, day time.Time) (*models.Attendance, error) {
	var record models.Attendance
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, day).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Create creates a new record
func (r *GormAttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// SetCheckIn sets the check-in time if none is recorded yet
func (r *GormAttendanceRepository) SetCheckIn(ctx context.Context, id uint64, at time.Time, status models.AttendanceStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("id = ? AND check_in IS NULL", id).
		Updates(map[string]interface{}{
			"check_in": at,
			"status":   status,
		})
	return result.RowsAffected > 0, result.Error
}

// SetCheckOut sets the check-out time if none is recorded yet
func (r *GormAttendanceRepository) SetCheckOut(ctx context.Context, id uint64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("id = ? AND check_in IS NOT NULL AND check_out IS NULL", id).
		Update("check_out", at)
	return result.RowsAffected > 0, result.Error
}

// List retrieves records with filtering and pagination
func (r *GormAttendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Attendance{})

	if filter.UserID != nil {
		query = query.Where("attendances.user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("attendances.status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("attendances.date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("attendances.date <= ?", *filter.To)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Session(&gorm.Session{}).Order("attendances.date DESC").Order("attendances.id DESC")
	listQuery = listQuery.Scopes(pageScope(filter.Page, filter.PageSize))
	if filter.PreloadUser {
		listQuery = listQuery.Preload("User")
	}

	var records []models.Attendance
	if err := listQuery.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// CountByDate counts one day's records by status. A non-nil empty userIDs
// matches nobody.
func (r *GormAttendanceRepository) CountByDate(ctx context.Context, day time.Time, userIDs []uint64) (AttendanceCounts, error) {
	var counts AttendanceCounts
	if userIDs != nil && len(userIDs) == 0 {
		return counts, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Attendance{}).Where("date = ?", day)
	if userIDs != nil {
		query = query.Where("user_id IN ?", userIDs)
	}

	var rows []struct {
		Status models.AttendanceStatus
		Count  int64
	}
	if err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return counts, err
	}

	for _, row := range rows {
		counts.Total += row.Count
		if row.Status.CountsAsPresent() {
			counts.Present += row.Count
		} else if row.Status == models.AttendanceStatusAbsent {
			counts.Absent += row.Count
		}
	}

	return counts, nil
}
