package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service *service.AttendanceService
	metrics *service.MetricsService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, metrics: metrics}
}

// Sheet godoc
// @Summary Get attendance sheet
// @Description Roster with saved statuses for one class day
// @Tags Attendance
// @Produce json
// @Param class query string true "Class name"
// @Param section query string true "Section"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/attendance [get]
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	className := c.Query("class")
	section := c.Query("section")
	date := c.Query("date")
	if className == "" || section == "" || date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class, section and date are required"))
		return
	}

	sheet, err := h.service.Sheet(c.Request.Context(), className, section, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sheet, nil)
}

// Submit godoc
// @Summary Submit attendance sheet
// @Description Replace the full attendance set for one class day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.SubmitAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/attendance [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SubmitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	sheet, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sheet, nil)
}

// ExportCSV godoc
// @Summary Export attendance sheet as CSV
// @Tags Attendance
// @Produce text/csv
// @Param class query string true "Class name"
// @Param section query string true "Section"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /teacher/attendance/export [get]
func (h *AttendanceHandler) ExportCSV(c *gin.Context) {
	className := c.Query("class")
	section := c.Query("section")
	date := c.Query("date")
	if className == "" || section == "" || date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class, section and date are required"))
		return
	}

	payload, filename, err := h.service.ExportSheetCSV(c.Request.Context(), className, section, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordExport("csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", payload)
}

// StudentHistory godoc
// @Summary Student attendance history
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teacher/students/{id}/attendance [get]
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	studentID := c.Param("id")

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as YYYY-MM-DD"))
			return
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted as YYYY-MM-DD"))
			return
		}
		to = &parsed
	}

	rows, err := h.service.StudentHistory(c.Request.Context(), studentID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}
