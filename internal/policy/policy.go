// Package policy holds the static table of which roles may perform which
// role-gated actions.
package policy

import (
	"fmt"

	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
)

type Action string

const (
	CreateTeam        Action = "CREATE_TEAM"
	CreateProject     Action = "CREATE_PROJECT"
	DeleteTask        Action = "DELETE_TASK"
	ViewAllAttendance Action = "VIEW_ALL_ATTENDANCE"
	ExportAttendance  Action = "EXPORT_ATTENDANCE"
	ManageTeamMembers Action = "MANAGE_TEAM_MEMBERS"
	ManageUsers       Action = "MANAGE_USERS"
	ChangeUserRole    Action = "CHANGE_USER_ROLE"
	ViewCompanyStats  Action = "VIEW_COMPANY_STATS"
	ViewTeamStats     Action = "VIEW_TEAM_STATS"
	ViewAllTasks      Action = "VIEW_ALL_TASKS"
)

var capabilities = map[Action][]models.Role{
	CreateTeam:        {models.RoleSuperAdmin, models.RoleHR},
	CreateProject:     {models.RoleSuperAdmin, models.RoleHR, models.RoleProjectManager},
	DeleteTask:        {models.RoleSuperAdmin},
	ViewAllAttendance: {models.RoleSuperAdmin, models.RoleHR},
	ExportAttendance:  {models.RoleSuperAdmin, models.RoleHR},
	ManageTeamMembers: {models.RoleSuperAdmin, models.RoleHR},
	ManageUsers:       {models.RoleSuperAdmin, models.RoleHR},
	ChangeUserRole:    {models.RoleSuperAdmin},
	ViewCompanyStats:  {models.RoleSuperAdmin, models.RoleHR},
	ViewTeamStats:     {models.RoleTeamLeader, models.RoleProjectManager},
	ViewAllTasks:      {models.RoleSuperAdmin, models.RoleHR},
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role models.Role, action Action) bool {
	for _, r := range capabilities[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns a Forbidden error when role may not perform action.
func Authorize(role models.Role, action Action) error {
	if Allowed(role, action) {
		return nil
	}
	return apierrors.New(apierrors.ErrForbidden, fmt.Sprintf("role %s is not allowed to %s", role, action.describe()))
}

func (a Action) describe() string {
	switch a {
	case CreateTeam:
		return "create teams"
	case CreateProject:
		return "create projects"
	case DeleteTask:
		return "delete tasks"
	case ViewAllAttendance:
		return "view all attendance"
	case ExportAttendance:
		return "export attendance"
	case ManageTeamMembers:
		return "manage team members"
	case ManageUsers:
		return "manage users"
	case ChangeUserRole:
		return "change user roles"
	case ViewCompanyStats:
		return "view company statistics"
	case ViewTeamStats:
		return "view team statistics"
	case ViewAllTasks:
		return "view all tasks"
	}
	return string(a)
}
