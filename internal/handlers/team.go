package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/middleware"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// ListTeams returns teams newest first with member and project counts
func (h *TeamHandler) ListTeams(c *gin.Context) {
	params := utils.GetPaginationParams(c, constants.DefaultPageSize)

	teams, total, err := h.teamService.ListTeams(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamListResponse(teams, params, total))
}

// GetTeam returns a team with its leader and members
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamService.GetTeam(c.Request.Context(), middleware.GetIDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"team": dto.ToTeamDTO(*team)})
}

// CreateTeam creates a team; the caller leads it unless leaderId is given
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateTeamRequest struct {
		Name        string  `json:"name" binding:"required,max=255"`
		Description string  `json:"description"`
		LeaderID    *uint64 `json:"leaderId" binding:"omitempty,gt=0"`
	}

	var req CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), user, services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    req.LeaderID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"team": dto.ToTeamDTO(*team)})
}

// AddMember adds a user to the team
func (h *TeamHandler) AddMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64 `json:"userId" binding:"required,gt=0"`
	}

	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.teamService.AddMember(c.Request.Context(), user, middleware.GetIDParam(c, "id"), req.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": dto.ToTeamMemberDTO(*member)})
}

// RemoveMember removes a user from the team
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	err := h.teamService.RemoveMember(c.Request.Context(), user, middleware.GetIDParam(c, "id"), middleware.GetIDParam(c, "memberId"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
