package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// ExamHandler wires HTTP endpoints to the exam service.
type ExamHandler struct {
	service *service.ExamService
	metrics *service.MetricsService
}

// NewExamHandler creates a new handler.
func NewExamHandler(svc *service.ExamService, metrics *service.MetricsService) *ExamHandler {
	return &ExamHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Create exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body models.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam payload"))
		return
	}

	exam, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, exam)
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Param class query string false "Class name"
// @Param section query string false "Section"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Router /teacher/exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	exams, err := h.service.List(c.Request.Context(), models.ExamFilter{
		TeacherID: claims.UserID,
		ClassName: c.Query("class"),
		Section:   c.Query("section"),
		Subject:   c.Query("subject"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, exams, nil)
}

// Delete godoc
// @Summary Delete exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SubmitMarks godoc
// @Summary Submit exam marks
// @Description Replace the exam's full mark set
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body models.SubmitMarksRequest true "Marks payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/exams/{id}/marks [put]
func (h *ExamHandler) SubmitMarks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SubmitMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marks payload"))
		return
	}

	if err := h.service.SubmitMarks(c.Request.Context(), claims.UserID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}

	results, err := h.service.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, results, nil)
}

// Results godoc
// @Summary Exam results
// @Description Computed percentages, grades, pass flags and ranks
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/exams/{id}/results [get]
func (h *ExamHandler) Results(c *gin.Context) {
	results, err := h.service.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, results, nil)
}

// ExportResultsPDF godoc
// @Summary Export exam results as PDF
// @Tags Exams
// @Produce application/pdf
// @Param id path string true "Exam ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /teacher/exams/{id}/results/export [get]
func (h *ExamHandler) ExportResultsPDF(c *gin.Context) {
	payload, filename, err := h.service.ExportResultsPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordExport("pdf")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", payload)
}
