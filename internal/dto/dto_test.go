package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

func TestToTaskDTO_OmitsUnloadedRelations(t *testing.T) {
	task := models.Task{ID: 1, Title: "t", CreatedByID: 2, Status: models.TaskStatusTodo}

	dto := ToTaskDTO(task)
	assert.Nil(t, dto.AssignedTo)
	assert.Nil(t, dto.CreatedBy)
	assert.Nil(t, dto.Project)
	assert.Nil(t, dto.Comments)

	assignee := models.User{ID: 3, FullName: "Ann", Email: "ann@example.com"}
	task.AssignedTo = &assignee
	task.CreatedBy = models.User{ID: 2, FullName: "Bob"}
	task.Team = &models.Team{ID: 9, Name: "Core"}

	dto = ToTaskDTO(task)
	require.NotNil(t, dto.AssignedTo)
	assert.Equal(t, "ann@example.com", dto.AssignedTo.Email)
	require.NotNil(t, dto.CreatedBy)
	assert.Equal(t, "Bob", dto.CreatedBy.FullName)
	assert.Equal(t, &RefDTO{ID: 9, Name: "Core"}, dto.Team)
}

func TestToAttendanceCSVRow(t *testing.T) {
	in := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)
	record := models.Attendance{
		Date:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckIn: &in,
		Status:  models.AttendanceStatusLate,
		User:    models.User{ID: 1, FullName: "Ann", Email: "ann@example.com"},
	}

	assert.Equal(t,
		[]string{"2026-03-10", "Ann", "ann@example.com", "2026-03-10T09:05:00Z", "", "LATE", ""},
		ToAttendanceCSVRow(record),
	)
	assert.Len(t, AttendanceCSVHeader, len(ToAttendanceCSVRow(record)))
}

func TestToStatsResponse_OmitsHiddenSections(t *testing.T) {
	resp := ToStatsResponse(&services.Stats{Personal: services.PersonalStats{TotalTasks: 2}})

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stats":{"personal":{"totalTasks":2,"completedTasks":0,"overdueTasks":0,"todayAttendance":null}}}`, string(body))
}

func TestListResponsesCarryPagination(t *testing.T) {
	params := utils.NewPaginationParams(2, 10, 20)
	resp := ToUserListResponse([]models.User{{ID: 1}}, params, 25)

	assert.Len(t, resp.Users, 1)
	assert.Equal(t, utils.PaginationResponse{Page: 2, Limit: 10, Total: 25, Pages: 3}, resp.Pagination)
}
