package repository

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		if p == "Comments" {
			query = query.Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("task_comments.created_at ASC").Order("task_comments.id ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// applyScope ANDs the visibility predicate onto query. The leader branch is
// a parenthesized group so later filters cannot widen it.
func (r *GormTaskRepository) applyScope(query *gorm.DB, scope TaskScope) *gorm.DB {
	if !scope.Restricted {
		return query
	}
	if len(scope.TeamIDs) == 0 {
		return query.Where("tasks.assigned_to_id = ?", scope.AssigneeID)
	}
	return query.Where(
		r.db.Where("tasks.assigned_to_id = ?", scope.AssigneeID).
			Or("tasks.team_id IN ?", scope.TeamIDs),
	)
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, scope TaskScope, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.applyScope(r.db.WithContext(ctx).Model(&models.Task{}), scope)

	// Apply filters
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.TeamID != nil {
		query = query.Where("tasks.team_id = ?", *filter.TeamID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			r.db.Where("LOWER(tasks.title) LIKE ?", pattern).
				Or("LOWER(tasks.description) LIKE ?", pattern),
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Session(&gorm.Session{}).Order("tasks.created_at DESC").Order("tasks.id DESC")
	listQuery = listQuery.Scopes(pageScope(filter.Page, filter.PageSize))

	var tasks []models.Task
	if err := listQuery.
		Preload("AssignedTo").
		Preload("CreatedBy").
		Preload("Project").
		Preload("Team").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(
		"AssignedTo", "CreatedBy", "Project", "Team", "Comments",
	).Save(task).Error
}

// SaveProgress stores the new progress and the optional comment in one transaction
func (r *GormTaskRepository) SaveProgress(ctx context.Context, task *models.Task, comment *models.TaskComment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).
			Update("progress", task.Progress).Error; err != nil {
			return err
		}

		if comment != nil {
			comment.TaskID = task.ID
			if err := tx.Create(comment).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddComment appends a comment to a task
func (r *GormTaskRepository) AddComment(ctx context.Context, comment *models.TaskComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListComments lists a task's comments with their authors, oldest first
func (r *GormTaskRepository) ListComments(ctx context.Context, taskID uint64) ([]models.TaskComment, error) {
	var comments []models.TaskComment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").Order("id ASC").
		Preload("User").
		Find(&comments).Error
	return comments, err
}

// CountForAssignee counts the tasks assigned to a user
func (r *GormTaskRepository) CountForAssignee(ctx context.Context, userID uint64, now time.Time) (TaskCounts, error) {
	var counts TaskCounts
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(SUM(CASE WHEN deadline IS NOT NULL AND deadline < ? AND status <> ? THEN 1 ELSE 0 END), 0) AS overdue",
			models.TaskStatusCompleted, now, models.TaskStatusCompleted,
		).
		Where("assigned_to_id = ?", userID).
		Scan(&counts).Error
	return counts, err
}

// CountAll counts every non-deleted task and how many are completed
func (r *GormTaskRepository) CountAll(ctx context.Context) (TaskCounts, error) {
	var counts TaskCounts
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed",
			models.TaskStatusCompleted,
		).
		Scan(&counts).Error
	return counts, err
}

// CountByProjects counts non-deleted tasks per project
func (r *GormTaskRepository) CountByProjects(ctx context.Context, projectIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ProjectID uint64
		Count     int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select("project_id, COUNT(*) AS count").
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ProjectID] = row.Count
	}
	return counts, nil
}
