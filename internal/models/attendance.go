package models

import "time"

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
)

// Valid reports whether s is one of PRESENT, ABSENT or LATE.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	}
	return false
}

// CountsAsPresent reports whether s counts as present in reports. LATE does.
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// Attendance is one user's record for one calendar day. Date holds the day
// key (midnight UTC of the local calendar date) and is unique per user.
type Attendance struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	UserID    uint64           `gorm:"not null;uniqueIndex:idx_attendance_user_date,priority:1" json:"userId"`
	Date      time.Time        `gorm:"not null;uniqueIndex:idx_attendance_user_date,priority:2;index" json:"date"`
	CheckIn   *time.Time       `json:"checkIn"`
	CheckOut  *time.Time       `json:"checkOut"`
	Status    AttendanceStatus `gorm:"type:varchar(16);not null;default:'PRESENT';index" json:"status"`
	Notes     string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
