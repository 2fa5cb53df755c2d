package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Stats is the role-dependent dashboard read model. Company and Team are
// nil when the caller's role does not qualify for them.
type Stats struct {
	Personal         PersonalStats     `json:"personal"`
	Company          *CompanyStats     `json:"company,omitempty"`
	RecentActivities []models.AuditLog `json:"recentActivities,omitempty"`
	Team             *TeamStats        `json:"team,omitempty"`
}

type PersonalStats struct {
	TotalTasks      int64              `json:"totalTasks"`
	CompletedTasks  int64              `json:"completedTasks"`
	OverdueTasks    int64              `json:"overdueTasks"`
	TodayAttendance *models.Attendance `json:"todayAttendance"`
}

type CompanyStats struct {
	TotalUsers     int64           `json:"totalUsers"`
	ActiveUsers    int64           `json:"activeUsers"`
	TotalProjects  int64           `json:"totalProjects"`
	TotalTasks     int64           `json:"totalTasks"`
	CompletedTasks int64           `json:"completedTasks"`
	CompletionRate float64         `json:"completionRate"`
	Attendance     AttendanceStats `json:"attendance"`
}

type TeamStats struct {
	TotalMembers   int64               `json:"totalMembers"`
	TotalTasks     int64               `json:"totalTasks"`
	CompletedTasks int64               `json:"completedTasks"`
	Attendance     TeamAttendanceStats `json:"attendance"`
}

type AttendanceStats struct {
	Total             int64   `json:"total"`
	Present           int64   `json:"present"`
	Absent            int64   `json:"absent"`
	PresentPercentage float64 `json:"presentPercentage"`
}

type TeamAttendanceStats struct {
	Total             int64   `json:"total"`
	Present           int64   `json:"present"`
	PresentPercentage float64 `json:"presentPercentage"`
}

// StatsService aggregates the dashboard.
type StatsService struct {
	users       repository.UserRepository
	tasks       repository.TaskRepository
	projects    repository.ProjectRepository
	teams       repository.TeamRepository
	attendances repository.AttendanceRepository
	audit       repository.AuditLogRepository
	loc         *time.Location
	now         Clock
}

// NewStatsService creates a new StatsService. "Today" is the day key of the
// clock in loc, the same key check-in writes.
func NewStatsService(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	teams repository.TeamRepository,
	attendances repository.AttendanceRepository,
	audit repository.AuditLogRepository,
	loc *time.Location,
	now Clock,
) *StatsService {
	return &StatsService{
		users:       users,
		tasks:       tasks,
		projects:    projects,
		teams:       teams,
		attendances: attendances,
		audit:       audit,
		loc:         loc,
		now:         now,
	}
}

// DashboardStats builds the stats for userID. The independent reads of each
// section run concurrently.
func (s *StatsService) DashboardStats(ctx context.Context, userID uint64) (*Stats, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	today := utils.DayKey(now, s.loc)
	stats := &Stats{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		personal, err := s.personal(gctx, user.ID, now, today)
		if err != nil {
			return err
		}
		stats.Personal = *personal
		return nil
	})

	if policy.Allowed(user.Role, policy.ViewCompanyStats) {
		g.Go(func() error {
			company, err := s.company(gctx, today)
			if err != nil {
				return err
			}
			stats.Company = company
			return nil
		})
		g.Go(func() error {
			recent, err := s.audit.Recent(gctx, constants.RecentActivityLimit)
			if err != nil {
				return fmt.Errorf("failed to load recent activity: %w", err)
			}
			stats.RecentActivities = recent
			return nil
		})
	}

	if policy.Allowed(user.Role, policy.ViewTeamStats) {
		g.Go(func() error {
			team, err := s.team(gctx, user.ID, today)
			if err != nil {
				return err
			}
			stats.Team = team
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *StatsService) personal(ctx context.Context, userID uint64, now, today time.Time) (*PersonalStats, error) {
	var (
		counts repository.TaskCounts
		record *models.Attendance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.tasks.CountForAssignee(gctx, userID, now)
		if err != nil {
			return fmt.Errorf("failed to count personal tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		record, err = s.attendances.FindByUserAndDate(gctx, userID, today)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record, err = nil, nil
		}
		if err != nil {
			return fmt.Errorf("failed to find today's attendance: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PersonalStats{
		TotalTasks:      counts.Total,
		CompletedTasks:  counts.Completed,
		OverdueTasks:    counts.Overdue,
		TodayAttendance: record,
	}, nil
}

func (s *StatsService) company(ctx context.Context, today time.Time) (*CompanyStats, error) {
	var (
		totalUsers, activeUsers, totalProjects int64
		tasks                                  repository.TaskCounts
		attendance                             repository.AttendanceCounts
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalUsers, err = s.users.Count(gctx, false)
		return wrapCount("users", err)
	})
	g.Go(func() (err error) {
		activeUsers, err = s.users.Count(gctx, true)
		return wrapCount("active users", err)
	})
	g.Go(func() (err error) {
		totalProjects, err = s.projects.Count(gctx)
		return wrapCount("projects", err)
	})
	g.Go(func() (err error) {
		tasks, err = s.tasks.CountAll(gctx)
		return wrapCount("tasks", err)
	})
	g.Go(func() (err error) {
		attendance, err = s.attendances.CountByDate(gctx, today, nil)
		return wrapCount("attendance", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CompanyStats{
		TotalUsers:     totalUsers,
		ActiveUsers:    activeUsers,
		TotalProjects:  totalProjects,
		TotalTasks:     tasks.Total,
		CompletedTasks: tasks.Completed,
		CompletionRate: utils.Percentage(tasks.Completed, tasks.Total),
		Attendance: AttendanceStats{
			Total:             attendance.Total,
			Present:           attendance.Present,
			Absent:            attendance.Absent,
			PresentPercentage: utils.Percentage(attendance.Present, attendance.Total),
		},
	}, nil
}

// team sums over the teams led by leaderID. Members are deduplicated across
// teams; task totals come from the preloaded team tasks.
func (s *StatsService) team(ctx context.Context, leaderID uint64, today time.Time) (*TeamStats, error) {
	teams, err := s.teams.FindLedWithMembersAndTasks(ctx, leaderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load led teams: %w", err)
	}

	seen := make(map[uint64]struct{})
	memberIDs := make([]uint64, 0)
	var totalTasks, completedTasks int64
	for _, team := range teams {
		for _, m := range team.Members {
			if _, ok := seen[m.UserID]; ok {
				continue
			}
			seen[m.UserID] = struct{}{}
			memberIDs = append(memberIDs, m.UserID)
		}
		for _, task := range team.Tasks {
			totalTasks++
			if task.Status == models.TaskStatusCompleted {
				completedTasks++
			}
		}
	}

	attendance, err := s.attendances.CountByDate(ctx, today, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count team attendance: %w", err)
	}

	return &TeamStats{
		TotalMembers:   int64(len(memberIDs)),
		TotalTasks:     totalTasks,
		CompletedTasks: completedTasks,
		Attendance: TeamAttendanceStats{
			Total:             attendance.Total,
			Present:           attendance.Present,
			PresentPercentage: utils.Percentage(attendance.Present, attendance.Total),
		},
	}, nil
}

func wrapCount(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", what, err)
	}
	return nil
}
