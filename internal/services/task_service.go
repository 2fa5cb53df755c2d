package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/workforce-api/internal/constants"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/notify"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = apierrors.New(apierrors.ErrNotFound, "task not found")
	ErrTitleRequired     = apierrors.New(apierrors.ErrInvalidInput, "title is required")
	ErrInvalidProgress   = apierrors.New(apierrors.ErrInvalidInput, "progress must be between 0 and 100")
	ErrInvalidTaskStatus = apierrors.New(apierrors.ErrInvalidInput, "invalid task status")
	ErrInvalidPriority   = apierrors.New(apierrors.ErrInvalidInput, "invalid task priority")
	ErrCommentRequired   = apierrors.New(apierrors.ErrInvalidInput, "comment content is required")
	ErrAssigneeNotFound  = apierrors.New(apierrors.ErrInvalidInput, "assignee does not exist")
	ErrProjectNotFound   = apierrors.New(apierrors.ErrNotFound, "project not found")
	ErrTeamNotFound      = apierrors.New(apierrors.ErrNotFound, "team not found")
)

var taskDetailPreloads = []string{"AssignedTo", "CreatedBy", "Project", "Team"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	teamRepo    repository.TeamRepository
	visibility  *TaskVisibility
	notifier    notify.Notifier
	audit       auditor
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditLogRepository,
	visibility *TaskVisibility,
	notifier notify.Notifier,
	log *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		visibility:  visibility,
		notifier:    notifier,
		audit:       auditor{repo: auditRepo, log: log},
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID    *uint64
	TeamID       *uint64
	AssignedToID *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	Search       string
	Page         int
	PageSize     int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	ProjectID    *uint64
	TeamID       *uint64
	AssignedToID *uint64
	Status       models.TaskStatus
	Priority     models.TaskPriority
	Deadline     *time.Time
}

// UpdateTaskInput represents a partial update; nil fields are left alone
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssignedToID  *uint64
	ClearAssignee bool
	Deadline      *time.Time
	ClearDeadline bool
}

// UpdateProgressInput represents a progress report
type UpdateProgressInput struct {
	Progress int
	Comment  string
}

// taskSnapshot is the audited view of a task
type taskSnapshot struct {
	Title        string              `json:"title"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	Progress     int                 `json:"progress"`
	AssignedToID *uint64             `json:"assignedToId"`
	Deadline     *time.Time          `json:"deadline"`
}

func snapshotTask(t *models.Task) taskSnapshot {
	return taskSnapshot{
		Title:        t.Title,
		Status:       t.Status,
		Priority:     t.Priority,
		Progress:     t.Progress,
		AssignedToID: t.AssignedToID,
		Deadline:     t.Deadline,
	}
}

// ListTasks returns the tasks visible to actor that match the filters
func (s *TaskService) ListTasks(ctx context.Context, actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	scope, err := s.visibility.ScopeFor(ctx, actor)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(ctx, scope, repository.TaskFilter{
		ProjectID:    input.ProjectID,
		TeamID:       input.TeamID,
		AssignedToID: input.AssignedToID,
		Status:       input.Status,
		Priority:     input.Priority,
		Search:       input.Search,
		Page:         input.Page,
		PageSize:     input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a visible task with its comments. Tasks outside the
// caller's scope are reported as not found.
func (s *TaskService) GetTask(ctx context.Context, actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.findVisible(ctx, actor, taskID, taskDetailPreloads...)
	if err != nil {
		return nil, err
	}

	comments, err := s.taskRepo.ListComments(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	task.Comments = comments

	return task, nil
}

func (s *TaskService) findVisible(ctx context.Context, actor *models.User, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	scope, err := s.visibility.ScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(task) {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

// CreateTask creates a task and notifies its assignee
func (s *TaskService) CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	title := utils.SanitizePlain(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if err := s.checkReferences(ctx, input.ProjectID, input.TeamID, input.AssignedToID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        title,
		Description:  utils.SanitizeText(input.Description),
		ProjectID:    input.ProjectID,
		TeamID:       input.TeamID,
		AssignedToID: input.AssignedToID,
		CreatedByID:  actor.ID,
		Status:       input.Status,
		Priority:     input.Priority,
		Deadline:     input.Deadline,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.audit.record(ctx, actor.ID, models.AuditActionCreateTask, models.AuditEntityTask, task.ID, nil, snapshotTask(task))

	if task.AssignedToID != nil && *task.AssignedToID != actor.ID {
		s.notifier.Notify(ctx, notify.Message{
			UserID:  *task.AssignedToID,
			Type:    models.NotificationTaskAssigned,
			Title:   "New task assigned",
			Message: fmt.Sprintf("%s assigned you %q", actor.FullName, task.Title),
			Link:    taskLink(task.ID),
		})
	}

	return s.reload(ctx, task.ID)
}

// UpdateTask applies a partial update to a visible task
func (s *TaskService) UpdateTask(ctx context.Context, actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findVisible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	before := snapshotTask(task)
	previousAssignee := task.AssignedToID

	if input.Title != nil {
		title := utils.SanitizePlain(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = utils.SanitizeText(*input.Description)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearAssignee {
		task.AssignedToID = nil
	} else if input.AssignedToID != nil {
		if err := s.checkReferences(ctx, nil, nil, input.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = input.AssignedToID
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.audit.record(ctx, actor.ID, models.AuditActionUpdateTask, models.AuditEntityTask, task.ID, before, snapshotTask(task))

	if task.AssignedToID != nil && *task.AssignedToID != actor.ID && !sameID(previousAssignee, task.AssignedToID) {
		s.notifier.Notify(ctx, notify.Message{
			UserID:  *task.AssignedToID,
			Type:    models.NotificationTaskAssigned,
			Title:   "Task assigned to you",
			Message: fmt.Sprintf("%s assigned you %q", actor.FullName, task.Title),
			Link:    taskLink(task.ID),
		})
	}

	return s.reload(ctx, task.ID)
}

// UpdateProgress records a progress report with an optional comment.
// Progress outside [0, 100] is rejected. Status is left to UpdateTask.
func (s *TaskService) UpdateProgress(ctx context.Context, actor *models.User, taskID uint64, input UpdateProgressInput) (*models.Task, error) {
	if input.Progress < models.MinTaskProgress || input.Progress > models.MaxTaskProgress {
		return nil, ErrInvalidProgress
	}

	task, err := s.findVisible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	before := snapshotTask(task)

	task.Progress = input.Progress

	var comment *models.TaskComment
	if content := utils.SanitizeText(input.Comment); content != "" {
		progress := input.Progress
		comment = &models.TaskComment{
			UserID:         actor.ID,
			Content:        content,
			ProgressUpdate: &progress,
		}
	}

	if err := s.taskRepo.SaveProgress(ctx, task, comment); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	s.audit.record(ctx, actor.ID, models.AuditActionUpdateTaskProgress, models.AuditEntityTask, task.ID, before, snapshotTask(task))

	if comment != nil && task.AssignedToID != nil && *task.AssignedToID != actor.ID {
		s.notifier.Notify(ctx, notify.Message{
			UserID:  *task.AssignedToID,
			Type:    models.NotificationTaskUpdated,
			Title:   "Task progress updated",
			Message: fmt.Sprintf("%s updated %q to %d%%", actor.FullName, task.Title, task.Progress),
			Link:    taskLink(task.ID),
		})
	}

	return s.reload(ctx, task.ID)
}

// AddComment appends a comment to a visible task
func (s *TaskService) AddComment(ctx context.Context, actor *models.User, taskID uint64, content string) (*models.TaskComment, error) {
	content = utils.SanitizeText(content)
	if content == "" {
		return nil, ErrCommentRequired
	}

	task, err := s.findVisible(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	comment := &models.TaskComment{
		TaskID:  task.ID,
		UserID:  actor.ID,
		Content: content,
	}
	if err := s.taskRepo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	comment.User = *actor

	if task.AssignedToID != nil && *task.AssignedToID != actor.ID {
		s.notifier.Notify(ctx, notify.Message{
			UserID:  *task.AssignedToID,
			Type:    models.NotificationCommentAdded,
			Title:   "New comment",
			Message: fmt.Sprintf("%s commented on %q", actor.FullName, task.Title),
			Link:    taskLink(task.ID),
		})
	}

	return comment, nil
}

// DeleteTask soft deletes a task; restricted to DeleteTask
func (s *TaskService) DeleteTask(ctx context.Context, actor *models.User, taskID uint64) error {
	if err := policy.Authorize(actor.Role, policy.DeleteTask); err != nil {
		return err
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.audit.record(ctx, actor.ID, models.AuditActionDeleteTask, models.AuditEntityTask, task.ID, snapshotTask(task), nil)
	return nil
}

func (s *TaskService) reload(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, taskDetailPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return task, nil
}

func (s *TaskService) checkReferences(ctx context.Context, projectID, teamID, assigneeID *uint64) error {
	if projectID != nil {
		if _, err := s.projectRepo.FindByID(ctx, *projectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("failed to find project: %w", err)
		}
	}
	if teamID != nil {
		if err := findTeam(ctx, s.teamRepo, *teamID); err != nil {
			return err
		}
	}
	if assigneeID != nil {
		if _, err := s.userRepo.FindByID(ctx, *assigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssigneeNotFound
			}
			return fmt.Errorf("failed to find assignee: %w", err)
		}
	}
	return nil
}

func taskLink(id uint64) string {
	return fmt.Sprintf("%s/%d", constants.TasksLink, id)
}

func sameID(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
