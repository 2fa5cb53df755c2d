package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
)

func TestAttendanceHandler_CheckInAndOut(t *testing.T) {
	srv := newTestServer(t)
	user := srv.fx.User("worker@example.com", models.RoleTeamMember)

	w := srv.request(http.MethodGet, "/api/attendance/today", nil, user)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"attendance":null}`, w.Body.String())

	w = srv.request(http.MethodPost, "/api/attendance/check-out", nil, user)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrCodeNotCheckedIn, errorCode(t, w))

	w = srv.request(http.MethodPost, "/api/attendance/check-in", nil, user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var checkedIn struct {
		Attendance dto.AttendanceDTO `json:"attendance"`
	}
	decodeJSON(t, w, &checkedIn)
	assert.Equal(t, "2026-03-10", checkedIn.Attendance.Date)
	assert.Equal(t, models.AttendanceStatusPresent, checkedIn.Attendance.Status)
	require.NotNil(t, checkedIn.Attendance.CheckIn)

	w = srv.request(http.MethodPost, "/api/attendance/check-in", nil, user)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrCodeAlreadyCheckedIn, errorCode(t, w))

	w = srv.request(http.MethodPost, "/api/attendance/check-out", nil, user)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.request(http.MethodPost, "/api/attendance/check-out", nil, user)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrCodeAlreadyCheckedOut, errorCode(t, w))

	var stored []models.Attendance
	require.NoError(t, srv.db.Where("user_id = ?", user.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].CheckIn.Equal(*checkedIn.Attendance.CheckIn))
}

func TestAttendanceHandler_ListMine(t *testing.T) {
	srv := newTestServer(t)
	user := srv.fx.User("worker@example.com", models.RoleTeamMember)
	other := srv.fx.User("other@example.com", models.RoleTeamMember)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		srv.fx.Attendance(user.ID, day.AddDate(0, 0, i), models.AttendanceStatusPresent)
	}
	srv.fx.Attendance(other.ID, day, models.AttendanceStatusPresent)

	w := srv.request(http.MethodGet, "/api/attendance/me?limit=2", nil, user)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AttendanceListResponse
	decodeJSON(t, w, &response)
	require.Len(t, response.Attendance, 2)
	assert.Equal(t, "2026-03-05", response.Attendance[0].Date)
	assert.Equal(t, int64(5), response.Pagination.Total)
	assert.Equal(t, 3, response.Pagination.Pages)

	w = srv.request(http.MethodGet, "/api/attendance/me?from=2026-03-02&to=2026-03-03", nil, user)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &response)
	assert.Equal(t, int64(2), response.Pagination.Total)

	w = srv.request(http.MethodGet, "/api/attendance/me?from=2026-03-05&to=2026-03-01", nil, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.request(http.MethodGet, "/api/attendance/me?from=yesterday", nil, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandler_ListAllRequiresCapability(t *testing.T) {
	srv := newTestServer(t)
	hr := srv.fx.User("hr@example.com", models.RoleHR)
	member := srv.fx.User("member@example.com", models.RoleTeamMember)
	srv.fx.Attendance(member.ID, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), models.AttendanceStatusLate)
	srv.fx.Attendance(hr.ID, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), models.AttendanceStatusPresent)

	w := srv.request(http.MethodGet, "/api/attendance", nil, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(http.MethodGet, "/api/attendance?status=LATE", nil, hr)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AttendanceListResponse
	decodeJSON(t, w, &response)
	require.Len(t, response.Attendance, 1)
	require.NotNil(t, response.Attendance[0].User)
	assert.Equal(t, "member@example.com", response.Attendance[0].User.Email)

	w = srv.request(http.MethodGet, "/api/attendance?status=SICK", nil, hr)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandler_Export(t *testing.T) {
	srv := newTestServer(t)
	hr := srv.fx.User("hr@example.com", models.RoleHR)
	member := srv.fx.User("member@example.com", models.RoleTeamMember)
	srv.fx.Attendance(member.ID, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), models.AttendanceStatusPresent)
	srv.fx.Attendance(member.ID, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), models.AttendanceStatusLate)

	w := srv.request(http.MethodGet, "/api/attendance/export", nil, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.request(http.MethodGet, "/api/attendance/export", nil, hr)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance-2026-03-10.csv")

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, dto.AttendanceCSVHeader, rows[0])
	assert.Equal(t, "2026-03-10", rows[1][0])
	assert.Equal(t, "LATE", rows[1][5])
	assert.Equal(t, "2026-03-09", rows[2][0])
}
