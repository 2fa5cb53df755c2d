package dto

import (
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID           uint64          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	LeaderID     uint64          `json:"leaderId"`
	CreatedAt    time.Time       `json:"createdAt"`
	Leader       *UserSummaryDTO `json:"leader,omitempty"`
	MemberCount  *int64          `json:"memberCount,omitempty"`
	ProjectCount *int64          `json:"projectCount,omitempty"`
	Members      []TeamMemberDTO `json:"members,omitempty"`
}

// TeamMemberDTO represents a membership
type TeamMemberDTO struct {
	UserID   uint64          `json:"userId"`
	JoinedAt time.Time       `json:"joinedAt"`
	User     *UserSummaryDTO `json:"user,omitempty"`
}

// TeamListResponse represents a paginated list of teams
type TeamListResponse struct {
	Teams      []TeamDTO                `json:"teams"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTeamDTO converts a Team model, including members if preloaded
func ToTeamDTO(team models.Team) TeamDTO {
	dto := TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		LeaderID:    team.LeaderID,
		CreatedAt:   team.CreatedAt,
		Leader:      ToUserSummaryDTO(&team.Leader),
	}

	if len(team.Members) > 0 {
		dto.Members = make([]TeamMemberDTO, len(team.Members))
		for i, m := range team.Members {
			dto.Members[i] = ToTeamMemberDTO(m)
		}
		count := int64(len(team.Members))
		dto.MemberCount = &count
	}

	return dto
}

// ToTeamMemberDTO converts a TeamMember model
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	return TeamMemberDTO{
		UserID:   member.UserID,
		JoinedAt: member.JoinedAt,
		User:     ToUserSummaryDTO(&member.User),
	}
}

// ToTeamListResponse converts a page of team summaries
func ToTeamListResponse(teams []services.TeamSummary, params utils.PaginationParams, total int64) TeamListResponse {
	items := make([]TeamDTO, len(teams))
	for i, t := range teams {
		items[i] = ToTeamDTO(t.Team)
		members, projects := t.MemberCount, t.ProjectCount
		items[i].MemberCount = &members
		items[i].ProjectCount = &projects
	}
	return TeamListResponse{
		Teams:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
