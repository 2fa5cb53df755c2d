package dto

import (
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/utils"
)

// RefDTO names a related project or team
type RefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	Progress     int                 `json:"progress"`
	Deadline     *time.Time          `json:"deadline"`
	ProjectID    *uint64             `json:"projectId"`
	TeamID       *uint64             `json:"teamId"`
	AssignedToID *uint64             `json:"assignedToId"`
	CreatedByID  uint64              `json:"createdById"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	AssignedTo   *UserSummaryDTO     `json:"assignedTo,omitempty"`
	CreatedBy    *UserSummaryDTO     `json:"createdBy,omitempty"`
	Project      *RefDTO             `json:"project,omitempty"`
	Team         *RefDTO             `json:"team,omitempty"`
	Comments     []TaskCommentDTO    `json:"comments,omitempty"`
}

// TaskCommentDTO represents a comment or progress report
type TaskCommentDTO struct {
	ID             uint64          `json:"id"`
	TaskID         uint64          `json:"taskId"`
	Content        string          `json:"content"`
	ProgressUpdate *int            `json:"progressUpdate"`
	CreatedAt      time.Time       `json:"createdAt"`
	User           *UserSummaryDTO `json:"user,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		Progress:     task.Progress,
		Deadline:     task.Deadline,
		ProjectID:    task.ProjectID,
		TeamID:       task.TeamID,
		AssignedToID: task.AssignedToID,
		CreatedByID:  task.CreatedByID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
		AssignedTo:   ToUserSummaryDTO(task.AssignedTo),
		CreatedBy:    ToUserSummaryDTO(&task.CreatedBy),
	}

	if task.Project != nil {
		dto.Project = &RefDTO{ID: task.Project.ID, Name: task.Project.Name}
	}
	if task.Team != nil {
		dto.Team = &RefDTO{ID: task.Team.ID, Name: task.Team.Name}
	}

	if len(task.Comments) > 0 {
		dto.Comments = make([]TaskCommentDTO, len(task.Comments))
		for i, comment := range task.Comments {
			dto.Comments[i] = ToTaskCommentDTO(comment)
		}
	}

	return dto
}

// ToTaskCommentDTO converts a TaskComment model
func ToTaskCommentDTO(comment models.TaskComment) TaskCommentDTO {
	return TaskCommentDTO{
		ID:             comment.ID,
		TaskID:         comment.TaskID,
		Content:        comment.Content,
		ProgressUpdate: comment.ProgressUpdate,
		CreatedAt:      comment.CreatedAt,
		User:           ToUserSummaryDTO(&comment.User),
	}
}

// ToTaskListResponse converts a page of tasks
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
