package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/utils"
)

type AttendanceHandler struct {
	attendanceService *services.AttendanceService
}

func NewAttendanceHandler(attendanceService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
	}
}

// CheckIn records the caller's arrival for today
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.CheckIn(c.Request.Context(), user.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"attendance": dto.ToAttendanceDTO(*record)})
}

// CheckOut records the caller's departure for today
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.CheckOut(c.Request.Context(), user.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attendance": dto.ToAttendanceDTO(*record)})
}

// Today returns the caller's record for today, or null
func (h *AttendanceHandler) Today(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.GetToday(c.Request.Context(), user.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TodayAttendanceResponse{Attendance: dto.ToAttendanceDTOPtr(record)})
}

// ListMine returns the caller's history, newest day first
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultAttendancePageSize)
	input, ok := attendanceFilter(c, params, false)
	if !ok {
		return
	}

	records, total, err := h.attendanceService.ListMine(c.Request.Context(), user.ID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAttendanceListResponse(records, params, total))
}

// ListAll returns everyone's attendance with user identities
func (h *AttendanceHandler) ListAll(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultAllAttendancePageSize)
	input, ok := attendanceFilter(c, params, true)
	if !ok {
		return
	}

	records, total, err := h.attendanceService.ListAll(c.Request.Context(), user, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAttendanceListResponse(records, params, total))
}

// Export streams every matching record as CSV
func (h *AttendanceHandler) Export(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	input, ok := attendanceFilter(c, utils.PaginationParams{}, true)
	if !ok {
		return
	}

	records, err := h.attendanceService.Export(c.Request.Context(), user, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.csv", h.attendanceService.Today().Format(dto.DateLayout))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.Write(dto.AttendanceCSVHeader); err != nil {
		_ = c.Error(err)
		return
	}
	for _, record := range records {
		if err := w.Write(dto.ToAttendanceCSVRow(record)); err != nil {
			_ = c.Error(err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

// attendanceFilter reads from/to and, for company-wide views, userId and
// status from the query string.
func attendanceFilter(c *gin.Context, params utils.PaginationParams, companyWide bool) (services.ListAttendanceInput, bool) {
	input := services.ListAttendanceInput{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	var ok bool
	if input.From, ok = parseOptionalDate(c, "from"); !ok {
		return input, false
	}
	if input.To, ok = parseOptionalDate(c, "to"); !ok {
		return input, false
	}

	if !companyWide {
		return input, true
	}

	if input.UserID, ok = parseOptionalID(c, "userId"); !ok {
		return input, false
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AttendanceStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return input, false
		}
		input.Status = &status
	}

	return input, true
}
