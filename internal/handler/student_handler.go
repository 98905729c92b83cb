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

// StudentHandler serves the student self-service views. Every endpoint
// resolves the roster record linked to the signed-in account first, so a
// student can only ever read their own data.
type StudentHandler struct {
	students   *service.StudentService
	attendance *service.AttendanceService
	exams      *service.ExamService
	homework   *service.HomeworkService
	timetable  *service.TimetableService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(students *service.StudentService, attendance *service.AttendanceService, exams *service.ExamService, homework *service.HomeworkService, timetable *service.TimetableService) *StudentHandler {
	return &StudentHandler{students: students, attendance: attendance, exams: exams, homework: homework, timetable: timetable}
}

func (h *StudentHandler) selfRecord(c *gin.Context) (*models.Student, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}

	student, err := h.students.SelfRecord(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return student, true
}

// Record godoc
// @Summary Own roster record
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/record [get]
func (h *StudentHandler) Record(c *gin.Context) {
	student, ok := h.selfRecord(c)
	if !ok {
		return
	}

	response.JSON(c, http.StatusOK, student, nil)
}

// AttendanceSummary godoc
// @Summary Own attendance summary
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/attendance/summary [get]
func (h *StudentHandler) AttendanceSummary(c *gin.Context) {
	student, ok := h.selfRecord(c)
	if !ok {
		return
	}

	summary, err := h.attendance.StudentSummary(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// AttendanceHistory godoc
// @Summary Own attendance history
// @Tags Students
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/attendance [get]
func (h *StudentHandler) AttendanceHistory(c *gin.Context) {
	student, ok := h.selfRecord(c)
	if !ok {
		return
	}

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

	rows, err := h.attendance.StudentHistory(c.Request.Context(), student.ID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// Marks godoc
// @Summary Own exam results
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/marks [get]
func (h *StudentHandler) Marks(c *gin.Context) {
	student, ok := h.selfRecord(c)
	if !ok {
		return
	}

	rows, err := h.exams.StudentResults(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// Homework godoc
// @Summary Homework for own class
// @Tags Students
// @Produce json
// @Param status query string false "Homework status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/homework [get]
func (h *StudentHandler) Homework(c *gin.Context) {
	student, ok := h.selfRecord(c)
	if !ok {
		return
	}

	filter := models.HomeworkFilter{
		ClassName: student.ClassName,
		Section:   student.Section,
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.HomeworkStatus(raw)
		filter.Status = &status
	}

	items, total, err := h.homework.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Timetable godoc
// @Summary Weekly timetable for own class
// @Tags Students
// @Produce json
// @Param day query string false "Weekday"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/timetable [get]
func (h *StudentHandler) Timetable(c *gin.Context) {
	student, ok := h.selfRecord(c)
	if !ok {
		return
	}

	entries, err := h.timetable.List(c.Request.Context(), models.TimetableFilter{
		ClassName: student.ClassName,
		Section:   student.Section,
		Day:       c.Query("day"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}
