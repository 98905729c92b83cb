package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// TimetableHandler wires HTTP endpoints to the timetable service.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Mine godoc
// @Summary Own weekly timetable
// @Tags Timetable
// @Produce json
// @Param day query string false "Weekday"
// @Success 200 {object} response.Envelope
// @Router /teacher/timetable [get]
func (h *TimetableHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.List(c.Request.Context(), models.TimetableFilter{
		TeacherID: claims.UserID,
		Day:       c.Query("day"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// Create godoc
// @Summary Create timetable slot
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateTimetableEntryRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req models.CreateTimetableEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}

	entry, err := h.service.CreateEntry(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, entry)
}

// List godoc
// @Summary List timetable slots
// @Tags Admin
// @Produce json
// @Param teacher_id query string false "Teacher ID"
// @Param class query string false "Class name"
// @Param section query string false "Section"
// @Success 200 {object} response.Envelope
// @Router /admin/timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), models.TimetableFilter{
		TeacherID: c.Query("teacher_id"),
		ClassName: c.Query("class"),
		Section:   c.Query("section"),
		Day:       c.Query("day"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// Delete godoc
// @Summary Delete timetable slot
// @Tags Admin
// @Produce json
// @Param id path string true "Slot ID"
// @Success 204 {object} response.Envelope
// @Router /admin/timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
