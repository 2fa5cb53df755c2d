package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/testutil"
)

func TestTeamHandler_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	hr := srv.fx.User("hr@example.com", models.RoleHR)
	leader := srv.fx.User("leader@example.com", models.RoleTeamLeader)
	alice := srv.fx.User("alice@example.com", models.RoleTeamMember)
	bob := srv.fx.User("bob@example.com", models.RoleTeamMember)

	w := srv.request(http.MethodPost, "/api/teams", map[string]interface{}{"name": "Nope"}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(http.MethodPost, "/api/teams", map[string]interface{}{
		"name":     "Platform",
		"leaderId": leader.ID,
	}, hr)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Team dto.TeamDTO `json:"team"`
	}
	decodeJSON(t, w, &created)
	assert.Equal(t, leader.ID, created.Team.LeaderID)
	membersPath := "/api/teams/" + idString(created.Team.ID) + "/members"

	w = srv.request(http.MethodPost, membersPath, map[string]interface{}{"userId": alice.ID}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(http.MethodPost, membersPath, map[string]interface{}{"userId": alice.ID}, leader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = srv.request(http.MethodPost, membersPath, map[string]interface{}{"userId": alice.ID}, leader)
	assert.Equal(t, http.StatusConflict, w.Code)

	var joined int64
	require.NoError(t, srv.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", alice.ID, models.NotificationTeamJoined).
		Count(&joined).Error)
	assert.Equal(t, int64(1), joined)

	w = srv.request(http.MethodGet, "/api/teams/"+idString(created.Team.ID), nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Team dto.TeamDTO `json:"team"`
	}
	decodeJSON(t, w, &detail)
	require.Len(t, detail.Team.Members, 1)
	assert.Equal(t, alice.ID, detail.Team.Members[0].UserID)

	w = srv.request(http.MethodDelete, membersPath+"/"+idString(leader.ID), nil, hr)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.request(http.MethodDelete, membersPath+"/"+idString(alice.ID), nil, leader)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.request(http.MethodDelete, membersPath+"/"+idString(alice.ID), nil, leader)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.request(http.MethodGet, "/api/teams", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.TeamListResponse
	decodeJSON(t, w, &list)
	require.Len(t, list.Teams, 1)
	require.NotNil(t, list.Teams[0].MemberCount)
	assert.Equal(t, int64(0), *list.Teams[0].MemberCount)
}

func TestProjectHandler(t *testing.T) {
	srv := newTestServer(t)
	pm := srv.fx.User("pm@example.com", models.RoleProjectManager)
	member := srv.fx.User("member@example.com", models.RoleTeamMember)

	w := srv.request(http.MethodPost, "/api/projects", map[string]interface{}{"name": "Nope"}, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(http.MethodPost, "/api/projects", map[string]interface{}{"name": "Bad", "status": "DONE"}, pm)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.request(http.MethodPost, "/api/projects", map[string]interface{}{"name": "Apollo"}, pm)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Project dto.ProjectDTO `json:"project"`
	}
	decodeJSON(t, w, &created)
	assert.Equal(t, pm.ID, created.Project.ManagerID)
	assert.Equal(t, models.ProjectStatusActive, created.Project.Status)

	srv.fx.Task("One", pm.ID, testutil.InProject(created.Project.ID))
	srv.fx.Task("Two", pm.ID, testutil.InProject(created.Project.ID))

	w = srv.request(http.MethodGet, "/api/projects", nil, member)
	require.Equal(t, http.StatusOK, w.Code)

	var list dto.ProjectListResponse
	decodeJSON(t, w, &list)
	require.Len(t, list.Projects, 1)
	require.NotNil(t, list.Projects[0].TaskCount)
	assert.Equal(t, int64(2), *list.Projects[0].TaskCount)
}

func TestUserHandler(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.fx.User("admin@example.com", models.RoleSuperAdmin)
	hr := srv.fx.User("hr@example.com", models.RoleHR)
	member := srv.fx.User("member@example.com", models.RoleTeamMember)
	srv.fx.InactiveUser("gone@example.com", models.RoleTeamMember)

	w := srv.request(http.MethodGet, "/api/users", nil, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(http.MethodGet, "/api/users?role=TEAM_MEMBER&isActive=true", nil, hr)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.UserListResponse
	decodeJSON(t, w, &list)
	require.Len(t, list.Users, 1)
	assert.Equal(t, member.ID, list.Users[0].ID)

	w = srv.request(http.MethodGet, "/api/users?role=BOSS", nil, hr)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rolePath := "/api/users/" + idString(member.ID) + "/role"
	w = srv.request(http.MethodPatch, rolePath, map[string]string{"role": "TEAM_LEADER"}, hr)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(http.MethodPatch, rolePath, map[string]string{"role": "CEO"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.request(http.MethodPatch, rolePath, map[string]string{"role": "TEAM_LEADER"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		User dto.UserDTO `json:"user"`
	}
	decodeJSON(t, w, &updated)
	assert.Equal(t, models.RoleTeamLeader, updated.User.Role)

	w = srv.request(http.MethodPatch, "/api/users/"+idString(hr.ID)+"/active", map[string]bool{"isActive": false}, hr)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.request(http.MethodPatch, "/api/users/"+idString(member.ID)+"/active", map[string]bool{"isActive": false}, hr)
	require.Equal(t, http.StatusOK, w.Code)

	// deactivation takes effect on the member's next request
	w = srv.request(http.MethodGet, "/api/auth/me", nil, member)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardHandler_SectionsByRole(t *testing.T) {
	srv := newTestServer(t)
	hr := srv.fx.User("hr@example.com", models.RoleHR)
	leader := srv.fx.User("leader@example.com", models.RoleTeamLeader)
	member := srv.fx.User("member@example.com", models.RoleTeamMember)
	team := srv.fx.Team("Core", leader.ID, member.ID)
	srv.fx.Task("Late", hr.ID,
		testutil.AssignedTo(member.ID),
		testutil.InTeam(team.ID),
		testutil.WithDeadline(srv.now.Add(-time.Hour)),
	)
	srv.fx.Attendance(member.ID, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), models.AttendanceStatusPresent)

	type statsBody struct {
		Stats map[string]interface{} `json:"stats"`
	}

	w := srv.request(http.MethodGet, "/api/dashboard/stats", nil, member)
	require.Equal(t, http.StatusOK, w.Code)
	var body statsBody
	decodeJSON(t, w, &body)
	assert.Contains(t, body.Stats, "personal")
	assert.NotContains(t, body.Stats, "company")
	assert.NotContains(t, body.Stats, "team")

	var typed dto.StatsResponse
	decodeJSON(t, w, &typed)
	assert.Equal(t, int64(1), typed.Stats.Personal.OverdueTasks)
	require.NotNil(t, typed.Stats.Personal.TodayAttendance)

	w = srv.request(http.MethodGet, "/api/dashboard/stats", nil, hr)
	require.Equal(t, http.StatusOK, w.Code)
	body = statsBody{}
	decodeJSON(t, w, &body)
	assert.Contains(t, body.Stats, "company")
	assert.NotContains(t, body.Stats, "team")

	w = srv.request(http.MethodGet, "/api/dashboard/stats", nil, leader)
	require.Equal(t, http.StatusOK, w.Code)
	typed = dto.StatsResponse{}
	decodeJSON(t, w, &typed)
	assert.Nil(t, typed.Stats.Company)
	require.NotNil(t, typed.Stats.Team)
	assert.Equal(t, int64(1), typed.Stats.Team.TotalMembers)
	assert.Equal(t, int64(1), typed.Stats.Team.Attendance.Present)
	assert.Equal(t, float64(100), typed.Stats.Team.Attendance.PresentPercentage)
}

func TestNotificationHandler(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.fx.User("alice@example.com", models.RoleTeamMember)
	bob := srv.fx.User("bob@example.com", models.RoleTeamMember)

	mine := &models.Notification{UserID: alice.ID, Type: models.NotificationTaskAssigned, Title: "first"}
	require.NoError(t, srv.db.Create(mine).Error)
	require.NoError(t, srv.db.Create(&models.Notification{UserID: alice.ID, Type: models.NotificationCommentAdded, Title: "second"}).Error)
	theirs := &models.Notification{UserID: bob.ID, Type: models.NotificationTaskAssigned, Title: "bob's"}
	require.NoError(t, srv.db.Create(theirs).Error)

	w := srv.request(http.MethodGet, "/api/notifications", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.NotificationListResponse
	decodeJSON(t, w, &list)
	assert.Len(t, list.Notifications, 2)

	w = srv.request(http.MethodPatch, "/api/notifications/"+idString(theirs.ID)+"/read", nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.request(http.MethodPatch, "/api/notifications/"+idString(mine.ID)+"/read", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.request(http.MethodPost, "/api/notifications/read-all", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":1}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	w := srv.request(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = srv.request(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `http_requests_total{method="GET",route="/health",status="200"} 1`))
}

func TestHealth_DatabaseDown(t *testing.T) {
	srv := newTestServer(t)

	sqlDB, err := srv.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := srv.request(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apierrors.ErrCodeServiceUnavailable, errorCode(t, w))
}
