package models

import "time"

// TaskComment is append-only; ProgressUpdate snapshots the progress value
// posted together with the comment, if any.
type TaskComment struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	TaskID         uint64    `gorm:"not null;index" json:"taskId"`
	UserID         uint64    `gorm:"not null;index" json:"userId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	ProgressUpdate *int      `json:"progressUpdate"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
