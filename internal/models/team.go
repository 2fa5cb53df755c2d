package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	LeaderID    uint64         `gorm:"not null;index" json:"leaderId"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Leader   User         `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Members  []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Tasks    []Task       `gorm:"foreignKey:TeamID" json:"-"`
	Projects []Project    `gorm:"foreignKey:TeamID" json:"-"`
}

type TeamMember struct {
	TeamID   uint64    `gorm:"primarykey" json:"teamId"`
	UserID   uint64    `gorm:"primarykey;index" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
