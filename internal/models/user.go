package models

import (
	"time"
)

type Role string

const (
	RoleSuperAdmin     Role = "SUPER_ADMIN"
	RoleHR             Role = "HR"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleTeamLeader     Role = "TEAM_LEADER"
	RoleTeamMember     Role = "TEAM_MEMBER"
)

// Roles lists every role in descending order of privilege.
var Roles = []Role{RoleSuperAdmin, RoleHR, RoleProjectManager, RoleTeamLeader, RoleTeamMember}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"fullName"`
	Role         Role      `gorm:"type:varchar(32);not null;default:'TEAM_MEMBER';index" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Relations
	AssignedTasks []Task `gorm:"foreignKey:AssignedToID" json:"-"`
	CreatedTasks  []Task `gorm:"foreignKey:CreatedByID" json:"-"`
}
