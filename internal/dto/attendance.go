package dto

import (
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/utils"
)

// DateLayout is the wire format of attendance day keys
const DateLayout = "2006-01-02"

// AttendanceDTO represents one day of attendance
type AttendanceDTO struct {
	ID       uint64                  `json:"id"`
	UserID   uint64                  `json:"userId"`
	Date     string                  `json:"date"`
	CheckIn  *time.Time              `json:"checkIn"`
	CheckOut *time.Time              `json:"checkOut"`
	Status   models.AttendanceStatus `json:"status"`
	Notes    string                  `json:"notes,omitempty"`
	User     *UserSummaryDTO         `json:"user,omitempty"`
}

// AttendanceListResponse represents a paginated attendance history
type AttendanceListResponse struct {
	Attendance []AttendanceDTO          `json:"attendance"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// TodayAttendanceResponse wraps today's record, which may be absent
type TodayAttendanceResponse struct {
	Attendance *AttendanceDTO `json:"attendance"`
}

// AttendanceCSVHeader is the header row of the export
var AttendanceCSVHeader = []string{"Date", "Employee", "Email", "Check In", "Check Out", "Status", "Notes"}

// ToAttendanceDTO converts an Attendance model
func ToAttendanceDTO(a models.Attendance) AttendanceDTO {
	return AttendanceDTO{
		ID:       a.ID,
		UserID:   a.UserID,
		Date:     a.Date.UTC().Format(DateLayout),
		CheckIn:  a.CheckIn,
		CheckOut: a.CheckOut,
		Status:   a.Status,
		Notes:    a.Notes,
		User:     ToUserSummaryDTO(&a.User),
	}
}

// ToAttendanceDTOPtr converts an optional record
func ToAttendanceDTOPtr(a *models.Attendance) *AttendanceDTO {
	if a == nil {
		return nil
	}
	dto := ToAttendanceDTO(*a)
	return &dto
}

// ToAttendanceListResponse converts a page of records
func ToAttendanceListResponse(records []models.Attendance, params utils.PaginationParams, total int64) AttendanceListResponse {
	items := make([]AttendanceDTO, len(records))
	for i, r := range records {
		items[i] = ToAttendanceDTO(r)
	}
	return AttendanceListResponse{
		Attendance: items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

// ToAttendanceCSVRow renders a record as one export row. Times are RFC 3339
// in UTC; a missing time is an empty cell.
func ToAttendanceCSVRow(a models.Attendance) []string {
	return []string{
		a.Date.UTC().Format(DateLayout),
		a.User.FullName,
		a.User.Email,
		formatOptionalTime(a.CheckIn),
		formatOptionalTime(a.CheckOut),
		string(a.Status),
		a.Notes,
	}
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
