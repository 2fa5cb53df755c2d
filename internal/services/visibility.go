package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/repository"
)

// TaskVisibility computes which tasks a user may see.
type TaskVisibility struct {
	teams repository.TeamRepository
}

func NewTaskVisibility(teams repository.TeamRepository) *TaskVisibility {
	return &TaskVisibility{teams: teams}
}

// ScopeFor returns the task scope of user:
//   - SUPER_ADMIN, HR: every task
//   - TEAM_LEADER, PROJECT_MANAGER: own tasks plus tasks of the teams they lead
//   - everyone else: own tasks
func (v *TaskVisibility) ScopeFor(ctx context.Context, user *models.User) (repository.TaskScope, error) {
	if policy.Allowed(user.Role, policy.ViewAllTasks) {
		return repository.Unrestricted(), nil
	}

	scope := repository.TaskScope{Restricted: true, AssigneeID: user.ID}

	switch user.Role {
	case models.RoleTeamLeader, models.RoleProjectManager:
		teamIDs, err := v.teams.LedTeamIDs(ctx, user.ID)
		if err != nil {
			return repository.TaskScope{}, fmt.Errorf("failed to resolve led teams: %w", err)
		}
		scope.TeamIDs = teamIDs
	}

	return scope, nil
}
