package dto

import (
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   *time.Time           `json:"startDate"`
	EndDate     *time.Time           `json:"endDate"`
	ManagerID   uint64               `json:"managerId"`
	TeamID      *uint64              `json:"teamId"`
	CreatedAt   time.Time            `json:"createdAt"`
	Manager     *UserSummaryDTO      `json:"manager,omitempty"`
	Team        *RefDTO              `json:"team,omitempty"`
	TaskCount   *int64               `json:"taskCount,omitempty"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO             `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToProjectDTO converts a Project model
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		ManagerID:   project.ManagerID,
		TeamID:      project.TeamID,
		CreatedAt:   project.CreatedAt,
		Manager:     ToUserSummaryDTO(&project.Manager),
	}
	if project.Team != nil {
		dto.Team = &RefDTO{ID: project.Team.ID, Name: project.Team.Name}
	}
	return dto
}

// ToProjectListResponse converts a page of project summaries
func ToProjectListResponse(projects []services.ProjectSummary, params utils.PaginationParams, total int64) ProjectListResponse {
	items := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		items[i] = ToProjectDTO(p.Project)
		count := p.TaskCount
		items[i].TaskCount = &count
	}
	return ProjectListResponse{
		Projects:   items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
