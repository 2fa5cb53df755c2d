package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/middleware"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user.
// Can filter by projectId, teamId, assignedToId, status, priority and search.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type ListTasksQuery struct {
		Status   string `form:"status" binding:"omitempty,taskstatus"`
		Priority string `form:"priority" binding:"omitempty,taskpriority"`
		Search   string `form:"search" binding:"max=255"`
	}

	var query ListTasksQuery
	if !bindQuery(c, &query) {
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultPageSize)
	input := services.ListTasksInput{
		Search:   query.Search,
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if input.ProjectID, ok = parseOptionalID(c, "projectId"); !ok {
		return
	}
	if input.TeamID, ok = parseOptionalID(c, "teamId"); !ok {
		return
	}
	if input.AssignedToID, ok = parseOptionalID(c, "assignedToId"); !ok {
		return
	}
	if query.Status != "" {
		status := models.TaskStatus(query.Status)
		input.Status = &status
	}
	if query.Priority != "" {
		priority := models.TaskPriority(query.Priority)
		input.Priority = &priority
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), user, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task by ID with its comments
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), user, middleware.GetIDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": dto.ToTaskDTO(*task)})
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title        string     `json:"title" binding:"required,max=255"`
		Description  string     `json:"description"`
		ProjectID    *uint64    `json:"projectId" binding:"omitempty,gt=0"`
		TeamID       *uint64    `json:"teamId" binding:"omitempty,gt=0"`
		AssignedToID *uint64    `json:"assignedToId" binding:"omitempty,gt=0"`
		Status       string     `json:"status" binding:"omitempty,taskstatus"`
		Priority     string     `json:"priority" binding:"omitempty,taskpriority"`
		Deadline     *time.Time `json:"deadline"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), user, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		ProjectID:    req.ProjectID,
		TeamID:       req.TeamID,
		AssignedToID: req.AssignedToID,
		Status:       models.TaskStatus(req.Status),
		Priority:     models.TaskPriority(req.Priority),
		Deadline:     req.Deadline,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": dto.ToTaskDTO(*task)})
}

// UpdateTask applies a partial update; omitted fields are left alone
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title         *string    `json:"title" binding:"omitempty,max=255"`
		Description   *string    `json:"description"`
		Status        *string    `json:"status" binding:"omitempty,taskstatus"`
		Priority      *string    `json:"priority" binding:"omitempty,taskpriority"`
		AssignedToID  *uint64    `json:"assignedToId" binding:"omitempty,gt=0"`
		ClearAssignee bool       `json:"clearAssignee"`
		Deadline      *time.Time `json:"deadline"`
		ClearDeadline bool       `json:"clearDeadline"`
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssignedToID:  req.AssignedToID,
		ClearAssignee: req.ClearAssignee,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), user, middleware.GetIDParam(c, "id"), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": dto.ToTaskDTO(*task)})
}

// UpdateProgress reports progress with an optional comment
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type UpdateProgressRequest struct {
		Progress *int   `json:"progress" binding:"required"`
		Comment  string `json:"comment"`
	}

	var req UpdateProgressRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateProgress(c.Request.Context(), user, middleware.GetIDParam(c, "id"), services.UpdateProgressInput{
		Progress: *req.Progress,
		Comment:  req.Comment,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": dto.ToTaskDTO(*task)})
}

// AddComment adds a comment to a visible task
func (h *TaskHandler) AddComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type AddCommentRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req AddCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.taskService.AddComment(c.Request.Context(), user, middleware.GetIDParam(c, "id"), req.Content)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": dto.ToTaskCommentDTO(*comment)})
}

// DeleteTask soft-deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), user, middleware.GetIDParam(c, "id")); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
