// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that is closed when the
// test finishes. The pool is pinned to one connection because every new
// connection to ":memory:" would see a fresh, empty database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// Fixtures creates rows with sensible defaults.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) User(email string, role models.Role) *models.User {
	f.t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		FullName:     email,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(f.t, f.db.Create(user).Error)
	return user
}

// InactiveUser creates a deactivated user. IsActive needs an explicit update
// because gorm skips zero values that have a column default on insert.
func (f *Fixtures) InactiveUser(email string, role models.Role) *models.User {
	f.t.Helper()
	user := f.User(email, role)
	require.NoError(f.t, f.db.Model(user).Update("is_active", false).Error)
	user.IsActive = false
	return user
}

func (f *Fixtures) Team(name string, leaderID uint64, memberIDs ...uint64) *models.Team {
	f.t.Helper()
	team := &models.Team{Name: name, LeaderID: leaderID}
	require.NoError(f.t, f.db.Create(team).Error)
	for _, id := range memberIDs {
		require.NoError(f.t, f.db.Create(&models.TeamMember{TeamID: team.ID, UserID: id, JoinedAt: time.Now()}).Error)
	}
	return team
}

func (f *Fixtures) Project(name string, managerID uint64) *models.Project {
	f.t.Helper()
	project := &models.Project{Name: name, ManagerID: managerID, Status: models.ProjectStatusActive}
	require.NoError(f.t, f.db.Create(project).Error)
	return project
}

// TaskOption customizes a fixture task.
type TaskOption func(*models.Task)

func AssignedTo(id uint64) TaskOption {
	return func(t *models.Task) { t.AssignedToID = &id }
}

func InTeam(id uint64) TaskOption {
	return func(t *models.Task) { t.TeamID = &id }
}

func InProject(id uint64) TaskOption {
	return func(t *models.Task) { t.ProjectID = &id }
}

func WithStatus(s models.TaskStatus) TaskOption {
	return func(t *models.Task) { t.Status = s }
}

func WithPriority(p models.TaskPriority) TaskOption {
	return func(t *models.Task) { t.Priority = p }
}

func WithDeadline(d time.Time) TaskOption {
	return func(t *models.Task) { t.Deadline = &d }
}

func WithDescription(d string) TaskOption {
	return func(t *models.Task) { t.Description = d }
}

func (f *Fixtures) Task(title string, creatorID uint64, opts ...TaskOption) *models.Task {
	f.t.Helper()
	task := &models.Task{
		Title:       title,
		CreatedByID: creatorID,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(f.t, f.db.Create(task).Error)
	return task
}

func (f *Fixtures) Attendance(userID uint64, day time.Time, status models.AttendanceStatus) *models.Attendance {
	f.t.Helper()
	checkIn := day.Add(9 * time.Hour)
	record := &models.Attendance{
		UserID:  userID,
		Date:    day,
		CheckIn: &checkIn,
		Status:  status,
	}
	require.NoError(f.t, f.db.Create(record).Error)
	return record
}

func (f *Fixtures) AuditLog(actorID uint64, action, entity string, entityID uint64) *models.AuditLog {
	f.t.Helper()
	entry := &models.AuditLog{UserID: actorID, Action: action, Entity: entity, EntityID: entityID}
	require.NoError(f.t, f.db.Create(entry).Error)
	return entry
}
