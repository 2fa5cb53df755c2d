package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AuditActionCreateTask         = "CREATE_TASK"
	AuditActionUpdateTask         = "UPDATE_TASK"
	AuditActionUpdateTaskProgress = "UPDATE_TASK_PROGRESS"
	AuditActionDeleteTask         = "DELETE_TASK"
	AuditActionCreateProject      = "CREATE_PROJECT"
	AuditActionCreateTeam         = "CREATE_TEAM"
	AuditActionAddTeamMember      = "ADD_TEAM_MEMBER"
	AuditActionRemoveTeamMember   = "REMOVE_TEAM_MEMBER"
	AuditActionUpdateUser         = "UPDATE_USER"
)

const (
	AuditEntityTask    = "TASK"
	AuditEntityProject = "PROJECT"
	AuditEntityTeam    = "TEAM"
	AuditEntityUser    = "USER"
)

// AuditLog is append-only. UserID is the actor.
type AuditLog struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	UserID    uint64         `gorm:"not null;index" json:"userId"`
	Action    string         `gorm:"type:varchar(64);not null" json:"action"`
	Entity    string         `gorm:"type:varchar(64);not null" json:"entity"`
	EntityID  uint64         `gorm:"not null;index" json:"entityId"`
	OldValue  datatypes.JSON `json:"oldValue,omitempty"`
	NewValue  datatypes.JSON `json:"newValue,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
