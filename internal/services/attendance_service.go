package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/workforce-api/internal/database"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrAlreadyCheckedIn  = apierrors.New(apierrors.ErrAlreadyCheckedIn, "already checked in today")
	ErrNotCheckedIn      = apierrors.New(apierrors.ErrNotCheckedIn, "not checked in today")
	ErrAlreadyCheckedOut = apierrors.New(apierrors.ErrAlreadyCheckedOut, "already checked out today")
	ErrInvalidDateRange  = apierrors.New(apierrors.ErrInvalidInput, "from must not be after to")
)

// AttendanceEventRecorder observes successful check-ins and check-outs.
type AttendanceEventRecorder interface {
	AttendanceEvent(event string)
}

type nopAttendanceEvents struct{}

func (nopAttendanceEvents) AttendanceEvent(string) {}

// AttendanceService implements daily check-in and check-out.
type AttendanceService struct {
	repo   repository.AttendanceRepository
	loc    *time.Location
	now    Clock
	events AttendanceEventRecorder
}

// NewAttendanceService creates a new AttendanceService. Day keys are taken
// in loc.
func NewAttendanceService(repo repository.AttendanceRepository, loc *time.Location, now Clock, events AttendanceEventRecorder) *AttendanceService {
	if events == nil {
		events = nopAttendanceEvents{}
	}
	return &AttendanceService{
		repo:   repo,
		loc:    loc,
		now:    now,
		events: events,
	}
}

// Today returns today's day key.
func (s *AttendanceService) Today() time.Time {
	return utils.DayKey(s.now(), s.loc)
}

// CheckIn records the first arrival of the day. Any later call the same day
// fails with ErrAlreadyCheckedIn and leaves the stored time untouched.
func (s *AttendanceService) CheckIn(ctx context.Context, userID uint64) (*models.Attendance, error) {
	now := s.now()
	day := utils.DayKey(now, s.loc)

	record, err := s.repo.FindByUserAndDate(ctx, userID, day)
	switch {
	case err == nil:
		if record.CheckIn != nil {
			return nil, ErrAlreadyCheckedIn
		}
		updated, err := s.repo.SetCheckIn(ctx, record.ID, now, models.AttendanceStatusPresent)
		if err != nil {
			return nil, fmt.Errorf("failed to check in: %w", err)
		}
		if !updated {
			return nil, ErrAlreadyCheckedIn
		}
		record.CheckIn = &now
		record.Status = models.AttendanceStatusPresent

	case errors.Is(err, gorm.ErrRecordNotFound):
		record = &models.Attendance{
			UserID:  userID,
			Date:    day,
			CheckIn: &now,
			Status:  models.AttendanceStatusPresent,
		}
		if err := s.repo.Create(ctx, record); err != nil {
			// a concurrent check-in won the unique (user, date) key
			if database.IsUniqueViolation(err) {
				return nil, ErrAlreadyCheckedIn
			}
			return nil, fmt.Errorf("failed to check in: %w", err)
		}

	default:
		return nil, fmt.Errorf("failed to find attendance: %w", err)
	}

	s.events.AttendanceEvent("check_in")
	return record, nil
}

// CheckOut records the departure for today's record.
func (s *AttendanceService) CheckOut(ctx context.Context, userID uint64) (*models.Attendance, error) {
	now := s.now()
	day := utils.DayKey(now, s.loc)

	record, err := s.repo.FindByUserAndDate(ctx, userID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, fmt.Errorf("failed to find attendance: %w", err)
	}

	if record.CheckIn == nil {
		return nil, ErrNotCheckedIn
	}
	if record.CheckOut != nil {
		return nil, ErrAlreadyCheckedOut
	}

	updated, err := s.repo.SetCheckOut(ctx, record.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check out: %w", err)
	}
	if !updated {
		return nil, ErrAlreadyCheckedOut
	}
	record.CheckOut = &now

	s.events.AttendanceEvent("check_out")
	return record, nil
}

// GetToday returns the user's record for today, or nil if there is none.
func (s *AttendanceService) GetToday(ctx context.Context, userID uint64) (*models.Attendance, error) {
	record, err := s.repo.FindByUserAndDate(ctx, userID, s.Today())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find attendance: %w", err)
	}
	return record, nil
}

// ListAttendanceInput represents filters for listing attendance
type ListAttendanceInput struct {
	UserID   *uint64
	Status   *models.AttendanceStatus
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

func (in ListAttendanceInput) filter() (repository.AttendanceFilter, error) {
	f := repository.AttendanceFilter{
		UserID:   in.UserID,
		Status:   in.Status,
		Page:     in.Page,
		PageSize: in.PageSize,
	}
	if in.From != nil {
		from := utils.DayKey(*in.From, time.UTC)
		f.From = &from
	}
	if in.To != nil {
		to := utils.DayKey(*in.To, time.UTC)
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, ErrInvalidDateRange
	}
	return f, nil
}

// ListMine lists the caller's own history.
func (s *AttendanceService) ListMine(ctx context.Context, userID uint64, input ListAttendanceInput) ([]models.Attendance, int64, error) {
	input.UserID = &userID
	f, err := input.filter()
	if err != nil {
		return nil, 0, err
	}

	records, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, total, nil
}

// ListAll lists everyone's attendance; restricted to ViewAllAttendance.
func (s *AttendanceService) ListAll(ctx context.Context, actor *models.User, input ListAttendanceInput) ([]models.Attendance, int64, error) {
	if err := policy.Authorize(actor.Role, policy.ViewAllAttendance); err != nil {
		return nil, 0, err
	}

	f, err := input.filter()
	if err != nil {
		return nil, 0, err
	}
	f.PreloadUser = true

	records, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, total, nil
}

// Export returns every matching record; restricted to ExportAttendance.
func (s *AttendanceService) Export(ctx context.Context, actor *models.User, input ListAttendanceInput) ([]models.Attendance, error) {
	if err := policy.Authorize(actor.Role, policy.ExportAttendance); err != nil {
		return nil, err
	}

	input.Page, input.PageSize = 0, 0
	f, err := input.filter()
	if err != nil {
		return nil, err
	}
	f.PreloadUser = true

	records, _, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to export attendance: %w", err)
	}
	return records, nil
}
