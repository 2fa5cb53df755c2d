package dto

import (
	"time"

	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
)

// StatsResponse wraps the dashboard
type StatsResponse struct {
	Stats StatsDTO `json:"stats"`
}

// StatsDTO is the dashboard; sections the caller may not see are omitted
type StatsDTO struct {
	Personal         PersonalStatsDTO       `json:"personal"`
	Company          *services.CompanyStats `json:"company,omitempty"`
	RecentActivities []ActivityDTO          `json:"recentActivities,omitempty"`
	Team             *services.TeamStats    `json:"team,omitempty"`
}

type PersonalStatsDTO struct {
	TotalTasks      int64          `json:"totalTasks"`
	CompletedTasks  int64          `json:"completedTasks"`
	OverdueTasks    int64          `json:"overdueTasks"`
	TodayAttendance *AttendanceDTO `json:"todayAttendance"`
}

// ActivityDTO is one audit-log entry with its actor
type ActivityDTO struct {
	ID        uint64          `json:"id"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  uint64          `json:"entityId"`
	CreatedAt time.Time       `json:"createdAt"`
	User      *UserSummaryDTO `json:"user,omitempty"`
}

// ToStatsResponse converts the aggregated stats
func ToStatsResponse(stats *services.Stats) StatsResponse {
	out := StatsDTO{
		Personal: PersonalStatsDTO{
			TotalTasks:      stats.Personal.TotalTasks,
			CompletedTasks:  stats.Personal.CompletedTasks,
			OverdueTasks:    stats.Personal.OverdueTasks,
			TodayAttendance: ToAttendanceDTOPtr(stats.Personal.TodayAttendance),
		},
		Company: stats.Company,
		Team:    stats.Team,
	}

	if stats.Company != nil {
		out.RecentActivities = make([]ActivityDTO, len(stats.RecentActivities))
		for i, entry := range stats.RecentActivities {
			out.RecentActivities[i] = ToActivityDTO(entry)
		}
	}

	return StatsResponse{Stats: out}
}

// ToActivityDTO converts an AuditLog model
func ToActivityDTO(entry models.AuditLog) ActivityDTO {
	return ActivityDTO{
		ID:        entry.ID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		CreatedAt: entry.CreatedAt,
		User:      ToUserSummaryDTO(&entry.User),
	}
}
