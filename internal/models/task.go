package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusReview     TaskStatus = "REVIEW"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether s is one of the kanban columns.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "LOW"
	TaskPriorityMedium   TaskPriority = "MEDIUM"
	TaskPriorityHigh     TaskPriority = "HIGH"
	TaskPriorityCritical TaskPriority = "CRITICAL"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

const (
	MinTaskProgress = 0
	MaxTaskProgress = 100
)

type Task struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	ProjectID    *uint64        `gorm:"index" json:"projectId"`
	TeamID       *uint64        `gorm:"index" json:"teamId"`
	AssignedToID *uint64        `gorm:"index" json:"assignedToId"`
	CreatedByID  uint64         `gorm:"not null;index" json:"createdById"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	Priority     TaskPriority   `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Progress     int            `gorm:"not null;default:0" json:"progress"`
	Deadline     *time.Time     `gorm:"index" json:"deadline"`
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	AssignedTo *User         `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	CreatedBy  User          `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Project    *Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Team       *Team         `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Comments   []TaskComment `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}
