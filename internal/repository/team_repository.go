package repository

import (
	"context"
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a team. The leader is not added to team_members.
func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Omit("Leader", "Members", "Tasks", "Projects").Create(team).Error
}

// FindByID finds a team by ID with optional preloading
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Team, error) {
	var team models.Team
	query := r.db.WithContext(ctx)
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List retrieves teams with their leader, newest first
func (r *GormTeamRepository) List(ctx context.Context, page, pageSize int) ([]models.Team, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Team{})

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Session(&gorm.Session{}).Order("created_at DESC").Order("id DESC")
	listQuery = listQuery.Scopes(pageScope(page, pageSize))

	var teams []models.Team
	if err := listQuery.Preload("Leader").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

// LedTeamIDs returns the ids of the teams a user leads
func (r *GormTeamRepository) LedTeamIDs(ctx context.Context, leaderID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&models.Team{}).
		Where("leader_id = ?", leaderID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// FindLedWithMembersAndTasks loads the teams a user leads with members and tasks
func (r *GormTeamRepository) FindLedWithMembersAndTasks(ctx context.Context, leaderID uint64) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Where("leader_id = ?", leaderID).
		Preload("Members").
		Preload("Tasks").
		Order("id").
		Find(&teams).Error
	return teams, err
}

// AddMember adds a user to a team
func (r *GormTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	return r.db.WithContext(ctx).Omit("User").Create(member).Error
}

// RemoveMember removes a user from a team
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID uint64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{})
	return result.RowsAffected > 0, result.Error
}

// CountMembers counts members per team
func (r *GormTeamRepository) CountMembers(ctx context.Context, teamIDs []uint64) (map[uint64]int64, error) {
	return r.countPerTeam(ctx, &models.TeamMember{}, teamIDs)
}

// CountProjects counts non-deleted projects per team
func (r *GormTeamRepository) CountProjects(ctx context.Context, teamIDs []uint64) (map[uint64]int64, error) {
	return r.countPerTeam(ctx, &models.Project{}, teamIDs)
}

func (r *GormTeamRepository) countPerTeam(ctx context.Context, model interface{}, teamIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(teamIDs))
	if len(teamIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TeamID uint64
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(model).
		Select("team_id, COUNT(*) AS count").
		Where("team_id IN ?", teamIDs).
		Group("team_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TeamID] = row.Count
	}
	return counts, nil
}
