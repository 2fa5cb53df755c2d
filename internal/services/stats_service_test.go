package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StatsServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	fx      *testutil.Fixtures
	now     time.Time
	today   time.Time
	service *StatsService
	ctx     context.Context
}

func (suite *StatsServiceTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.fx = testutil.NewFixtures(suite.T(), suite.db)
	suite.now = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	suite.today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	suite.service = NewStatsService(
		repository.NewUserRepository(suite.db),
		repository.NewTaskRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		repository.NewTeamRepository(suite.db),
		repository.NewAttendanceRepository(suite.db),
		repository.NewAuditLogRepository(suite.db),
		time.UTC,
		func() time.Time { return suite.now },
	)
	suite.ctx = context.Background()
}

func (suite *StatsServiceTestSuite) TestCompanyStats() {
	admin := suite.fx.User("admin@example.com", models.RoleSuperAdmin)
	var active []*models.User
	for i := 0; i < 3; i++ {
		active = append(active, suite.fx.User(fmt.Sprintf("active%d@example.com", i), models.RoleTeamMember))
	}
	var inactive []*models.User
	for i := 0; i < 6; i++ {
		inactive = append(inactive, suite.fx.InactiveUser(fmt.Sprintf("inactive%d@example.com", i), models.RoleTeamMember))
	}

	// 6 records today, 5 of them present (LATE counts as present)
	suite.fx.Attendance(admin.ID, suite.today, models.AttendanceStatusPresent)
	suite.fx.Attendance(active[0].ID, suite.today, models.AttendanceStatusPresent)
	suite.fx.Attendance(active[1].ID, suite.today, models.AttendanceStatusLate)
	suite.fx.Attendance(active[2].ID, suite.today, models.AttendanceStatusPresent)
	suite.fx.Attendance(inactive[0].ID, suite.today, models.AttendanceStatusPresent)
	suite.fx.Attendance(inactive[1].ID, suite.today, models.AttendanceStatusAbsent)
	// yesterday is not counted
	suite.fx.Attendance(inactive[2].ID, suite.today.AddDate(0, 0, -1), models.AttendanceStatusAbsent)

	suite.fx.Project("Apollo", admin.ID)
	suite.fx.Task("done", admin.ID, testutil.AssignedTo(admin.ID), testutil.WithStatus(models.TaskStatusCompleted))
	suite.fx.Task("late", admin.ID, testutil.AssignedTo(admin.ID), testutil.WithDeadline(suite.now.Add(-time.Hour)))
	suite.fx.Task("later", admin.ID, testutil.AssignedTo(admin.ID), testutil.WithDeadline(suite.now.Add(time.Hour)))

	for i := 0; i < 12; i++ {
		suite.fx.AuditLog(admin.ID, models.AuditActionCreateTask, models.AuditEntityTask, uint64(i+1))
	}

	stats, err := suite.service.DashboardStats(suite.ctx, admin.ID)
	suite.Require().NoError(err)

	suite.Equal(int64(3), stats.Personal.TotalTasks)
	suite.Equal(int64(1), stats.Personal.CompletedTasks)
	suite.Equal(int64(1), stats.Personal.OverdueTasks)
	suite.Require().NotNil(stats.Personal.TodayAttendance)
	suite.Equal(models.AttendanceStatusPresent, stats.Personal.TodayAttendance.Status)

	suite.Require().NotNil(stats.Company)
	suite.Equal(int64(10), stats.Company.TotalUsers)
	suite.Equal(int64(4), stats.Company.ActiveUsers)
	suite.Equal(int64(1), stats.Company.TotalProjects)
	suite.Equal(int64(3), stats.Company.TotalTasks)
	suite.Equal(int64(1), stats.Company.CompletedTasks)
	suite.Equal(33.33, stats.Company.CompletionRate)
	suite.Equal(int64(6), stats.Company.Attendance.Total)
	suite.Equal(int64(5), stats.Company.Attendance.Present)
	suite.Equal(int64(1), stats.Company.Attendance.Absent)
	suite.Equal(83.33, stats.Company.Attendance.PresentPercentage)

	suite.Len(stats.RecentActivities, 10)
	suite.Equal(uint64(12), stats.RecentActivities[0].EntityID)
	suite.Equal("admin@example.com", stats.RecentActivities[0].User.Email)

	suite.Nil(stats.Team)
}

func (suite *StatsServiceTestSuite) TestZeroDenominators() {
	hr := suite.fx.User("hr@example.com", models.RoleHR)

	stats, err := suite.service.DashboardStats(suite.ctx, hr.ID)
	suite.Require().NoError(err)

	suite.Require().NotNil(stats.Company)
	suite.Equal(int64(0), stats.Company.TotalTasks)
	suite.Equal(0.0, stats.Company.CompletionRate)
	suite.Equal(int64(0), stats.Company.Attendance.Total)
	suite.Equal(0.0, stats.Company.Attendance.PresentPercentage)
	suite.Nil(stats.Personal.TodayAttendance)
	suite.Empty(stats.RecentActivities)
}

func (suite *StatsServiceTestSuite) TestTeamStats() {
	leader := suite.fx.User("leader@example.com", models.RoleTeamLeader)
	m1 := suite.fx.User("m1@example.com", models.RoleTeamMember)
	m2 := suite.fx.User("m2@example.com", models.RoleTeamMember)
	outsider := suite.fx.User("outsider@example.com", models.RoleTeamMember)

	core := suite.fx.Team("Core", leader.ID, m1.ID, m2.ID)
	infra := suite.fx.Team("Infra", leader.ID, m1.ID)
	suite.fx.Team("Other", outsider.ID, outsider.ID)

	suite.fx.Task("a", leader.ID, testutil.InTeam(core.ID), testutil.WithStatus(models.TaskStatusCompleted))
	suite.fx.Task("b", leader.ID, testutil.InTeam(core.ID))
	deleted := suite.fx.Task("c", leader.ID, testutil.InTeam(infra.ID))
	suite.fx.Task("d", leader.ID, testutil.InTeam(infra.ID))
	suite.Require().NoError(suite.db.Delete(&models.Task{}, deleted.ID).Error)

	suite.fx.Attendance(m1.ID, suite.today, models.AttendanceStatusLate)
	suite.fx.Attendance(outsider.ID, suite.today, models.AttendanceStatusPresent)

	stats, err := suite.service.DashboardStats(suite.ctx, leader.ID)
	suite.Require().NoError(err)

	suite.Nil(stats.Company)
	suite.Empty(stats.RecentActivities)
	suite.Require().NotNil(stats.Team)
	suite.Equal(int64(2), stats.Team.TotalMembers)
	suite.Equal(int64(3), stats.Team.TotalTasks)
	suite.Equal(int64(1), stats.Team.CompletedTasks)
	suite.Equal(int64(1), stats.Team.Attendance.Total)
	suite.Equal(int64(1), stats.Team.Attendance.Present)
	suite.Equal(100.0, stats.Team.Attendance.PresentPercentage)
}

func (suite *StatsServiceTestSuite) TestTeamStats_LeaderIsNotCountedAsMember() {
	hr := suite.fx.User("hr@example.com", models.RoleHR)
	leader := suite.fx.User("leader@example.com", models.RoleTeamLeader)
	member := suite.fx.User("member@example.com", models.RoleTeamMember)

	teams := NewTeamService(
		repository.NewTeamRepository(suite.db),
		repository.NewUserRepository(suite.db),
		repository.NewAuditLogRepository(suite.db),
		&recordingNotifier{},
		zap.NewNop(),
	)
	team, err := teams.CreateTeam(suite.ctx, hr, CreateTeamInput{Name: "Core", LeaderID: &leader.ID})
	suite.Require().NoError(err)
	_, err = teams.AddMember(suite.ctx, leader, team.ID, member.ID)
	suite.Require().NoError(err)

	suite.fx.Attendance(leader.ID, suite.today, models.AttendanceStatusPresent)

	stats, err := suite.service.DashboardStats(suite.ctx, leader.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stats.Team)
	suite.Equal(int64(1), stats.Team.TotalMembers)
	suite.Equal(int64(0), stats.Team.Attendance.Total)
	suite.Equal(int64(0), stats.Team.Attendance.Present)
	suite.Equal(0.0, stats.Team.Attendance.PresentPercentage)
}

func (suite *StatsServiceTestSuite) TestMemberGetsPersonalOnly() {
	member := suite.fx.User("member@example.com", models.RoleTeamMember)

	stats, err := suite.service.DashboardStats(suite.ctx, member.ID)
	suite.Require().NoError(err)
	suite.Nil(stats.Company)
	suite.Nil(stats.Team)
	suite.Empty(stats.RecentActivities)
}

func (suite *StatsServiceTestSuite) TestUnknownUser() {
	_, err := suite.service.DashboardStats(suite.ctx, 404)
	suite.ErrorIs(err, apierrors.ErrNotFound)
}

func TestStatsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceTestSuite))
}
