package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// SyllabusHandler wires HTTP endpoints to the syllabus service.
type SyllabusHandler struct {
	service *service.SyllabusService
}

// NewSyllabusHandler creates a new handler.
func NewSyllabusHandler(svc *service.SyllabusService) *SyllabusHandler {
	return &SyllabusHandler{service: svc}
}

// CreateChapter godoc
// @Summary Add syllabus chapter
// @Tags Syllabus
// @Accept json
// @Produce json
// @Param payload body models.CreateChapterRequest true "Chapter payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/syllabus [post]
func (h *SyllabusHandler) CreateChapter(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chapter payload"))
		return
	}

	chapter, err := h.service.CreateChapter(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, chapter)
}

// ListChapters godoc
// @Summary List syllabus chapters with progress
// @Tags Syllabus
// @Produce json
// @Param class query string false "Class name"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Router /teacher/syllabus [get]
func (h *SyllabusHandler) ListChapters(c *gin.Context) {
	rows, err := h.service.ListChapters(c.Request.Context(), c.Query("class"), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// AdjustProgress godoc
// @Summary Adjust chapter progress counters
// @Description Applies deltas; committed counters come back clamped
// @Tags Syllabus
// @Accept json
// @Produce json
// @Param id path string true "Chapter ID"
// @Param payload body models.AdjustProgressRequest true "Deltas"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/syllabus/{id}/progress [patch]
func (h *SyllabusHandler) AdjustProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AdjustProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
		return
	}

	progress, err := h.service.AdjustProgress(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, progress, nil)
}

// DeleteChapter godoc
// @Summary Delete syllabus chapter
// @Tags Syllabus
// @Produce json
// @Param id path string true "Chapter ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/syllabus/{id} [delete]
func (h *SyllabusHandler) DeleteChapter(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteChapter(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
