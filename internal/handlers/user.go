package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/middleware"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns users filtered by role, active flag and search
func (h *UserHandler) ListUsers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type ListUsersQuery struct {
		Role     string `form:"role" binding:"omitempty,role"`
		IsActive *bool  `form:"isActive"`
		Search   string `form:"search" binding:"max=255"`
	}

	var query ListUsersQuery
	if !bindQuery(c, &query) {
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultPageSize)
	input := services.ListUsersInput{
		IsActive: query.IsActive,
		Search:   query.Search,
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if query.Role != "" {
		role := models.Role(query.Role)
		input.Role = &role
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), user, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params, total))
}

// SetActive activates or deactivates a user
func (h *UserHandler) SetActive(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type SetActiveRequest struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}

	var req SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.userService.SetActive(c.Request.Context(), user, middleware.GetIDParam(c, "id"), *req.IsActive)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*updated)})
}

// ChangeRole changes a user's role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type ChangeRoleRequest struct {
		Role string `json:"role" binding:"required,role"`
	}

	var req ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.userService.ChangeRole(c.Request.Context(), user, middleware.GetIDParam(c, "id"), models.Role(req.Role))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*updated)})
}
