package repository

import (
	"context"
	"time"

	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/utils"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by lower-cased email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users with filtering and pagination
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)

	// UpdateFields updates the given columns of a user
	UpdateFields(ctx context.Context, id uint64, fields map[string]interface{}) error

	// Count counts users, optionally only active ones
	Count(ctx context.Context, activeOnly bool) (int64, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role     *models.Role
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

// AttendanceRepository defines the interface for attendance data access
type AttendanceRepository interface {
	// FindByUserAndDate is the point lookup on the (user, day) key
	FindByUserAndDate(ctx context.Context, userID uint64, day time.Time) (*models.Attendance, error)

	// Create inserts a record; a second record for the same (user, day)
	// fails with a unique violation
	Create(ctx context.Context, record *models.Attendance) error

	// SetCheckIn sets check-in only if it is still empty and reports
	// whether the row was updated
	SetCheckIn(ctx context.Context, id uint64, at time.Time, status models.AttendanceStatus) (bool, error)

	// SetCheckOut sets check-out only if it is still empty and reports
	// whether the row was updated
	SetCheckOut(ctx context.Context, id uint64, at time.Time) (bool, error)

	// List retrieves attendance with filtering and pagination, date descending
	List(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, int64, error)

	// CountByDate counts the records of one day, optionally restricted to userIDs
	CountByDate(ctx context.Context, day time.Time, userIDs []uint64) (AttendanceCounts, error)
}

// AttendanceFilter holds filtering options for listing attendance.
// A zero PageSize returns every matching row.
type AttendanceFilter struct {
	UserID      *uint64
	Status      *models.AttendanceStatus
	From        *time.Time
	To          *time.Time
	PreloadUser bool
	Page        int
	PageSize    int
}

// AttendanceCounts is a per-day breakdown. Present includes LATE.
type AttendanceCounts struct {
	Total   int64
	Present int64
	Absent  int64
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a non-deleted task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves visible tasks with filtering and pagination
	List(ctx context.Context, scope TaskScope, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every field of a task
	Update(ctx context.Context, task *models.Task) error

	// SaveProgress updates progress and appends the comment, if any, atomically
	SaveProgress(ctx context.Context, task *models.Task, comment *models.TaskComment) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error

	// AddComment appends a comment
	AddComment(ctx context.Context, comment *models.TaskComment) error

	// ListComments lists a task's comments oldest first
	ListComments(ctx context.Context, taskID uint64) ([]models.TaskComment, error)

	// CountForAssignee counts tasks assigned to userID; overdue is relative to now
	CountForAssignee(ctx context.Context, userID uint64, now time.Time) (TaskCounts, error)

	// CountAll counts every non-deleted task
	CountAll(ctx context.Context) (TaskCounts, error)

	// CountByProjects counts non-deleted tasks per project
	CountByProjects(ctx context.Context, projectIDs []uint64) (map[uint64]int64, error)
}

// TaskFilter holds the optional filters that compose with a TaskScope
type TaskFilter struct {
	ProjectID    *uint64
	TeamID       *uint64
	AssignedToID *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	Search       string
	Page         int
	PageSize     int
}

// TaskCounts groups the task counters used by the dashboard.
type TaskCounts struct {
	Total     int64
	Completed int64
	Overdue   int64
}

// TaskScope restricts which tasks a user may see. An unrestricted scope sees
// every non-deleted task; a restricted one sees tasks assigned to AssigneeID
// plus tasks of the teams in TeamIDs.
type TaskScope struct {
	Restricted bool
	AssigneeID uint64
	TeamIDs    []uint64
}

// Unrestricted is the scope of roles that see all tasks.
func Unrestricted() TaskScope {
	return TaskScope{}
}

// Allows reports whether task falls inside the scope.
func (s TaskScope) Allows(task *models.Task) bool {
	if !s.Restricted {
		return true
	}
	if task.AssignedToID != nil && *task.AssignedToID == s.AssigneeID {
		return true
	}
	if task.TeamID != nil {
		for _, id := range s.TeamIDs {
			if id == *task.TeamID {
				return true
			}
		}
	}
	return false
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a team and adds the leader as its first member
	Create(ctx context.Context, team *models.Team) error

	// FindByID finds a non-deleted team with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Team, error)

	// List retrieves teams, newest first
	List(ctx context.Context, page, pageSize int) ([]models.Team, int64, error)

	// LedTeamIDs returns the ids of non-deleted teams led by userID
	LedTeamIDs(ctx context.Context, leaderID uint64) ([]uint64, error)

	// FindLedWithMembersAndTasks loads teams led by userID with their
	// members and non-deleted tasks
	FindLedWithMembersAndTasks(ctx context.Context, leaderID uint64) ([]models.Team, error)

	// AddMember adds a member; adding an existing member is a unique violation
	AddMember(ctx context.Context, member *models.TeamMember) error

	// RemoveMember removes a member and reports whether one was removed
	RemoveMember(ctx context.Context, teamID, userID uint64) (bool, error)

	// CountMembers counts members per team
	CountMembers(ctx context.Context, teamIDs []uint64) (map[uint64]int64, error)

	// CountProjects counts non-deleted projects per team
	CountProjects(ctx context.Context, teamIDs []uint64) (map[uint64]int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a non-deleted project
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// List retrieves projects with manager and team, newest first
	List(ctx context.Context, page, pageSize int) ([]models.Project, int64, error)

	// Count counts non-deleted projects
	Count(ctx context.Context) (int64, error)
}

// AuditLogRepository is the append-only audit trail
type AuditLogRepository interface {
	// Record appends an entry
	Record(ctx context.Context, entry *models.AuditLog) error

	// Recent returns the newest entries with their actor preloaded
	Recent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create stores a notification
	Create(ctx context.Context, notification *models.Notification) error

	// ListByUser lists a user's notifications, unread first, newest first
	ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]models.Notification, int64, error)

	// MarkRead marks one of the user's notifications read and reports
	// whether it exists
	MarkRead(ctx context.Context, id, userID uint64) (bool, error)

	// MarkAllRead marks every unread notification of the user read
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
}

// pageScope limits a list query to one page. A non-positive page or page
// size leaves the query unbounded.
func pageScope(page, pageSize int) func(*gorm.DB) *gorm.DB {
	if page <= 0 || pageSize <= 0 {
		return func(db *gorm.DB) *gorm.DB { return db }
	}
	return database.Paginate(utils.PaginationParams{
		Page:   page,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
}
