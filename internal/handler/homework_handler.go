package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// HomeworkHandler wires HTTP endpoints to the homework service.
type HomeworkHandler struct {
	service *service.HomeworkService
}

// NewHomeworkHandler creates a new handler.
func NewHomeworkHandler(svc *service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{service: svc}
}

// Create godoc
// @Summary Post homework
// @Description Multipart form; an optional attachment is stored and linked into the row
// @Tags Homework
// @Accept multipart/form-data
// @Produce json
// @Param class_name formData string true "Class name"
// @Param section formData string true "Section"
// @Param subject formData string true "Subject"
// @Param description formData string true "Description"
// @Param assigned_date formData string true "Assigned date (YYYY-MM-DD)"
// @Param due_date formData string true "Due date (YYYY-MM-DD)"
// @Param file formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/homework [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateHomeworkRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid homework payload"))
		return
	}

	// The attachment is optional; a form without a file part is fine.
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	hw, err := h.service.Create(c.Request.Context(), claims.UserID, req, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, hw)
}

// List godoc
// @Summary List homework
// @Tags Homework
// @Produce json
// @Param class query string false "Class name"
// @Param section query string false "Section"
// @Param status query string false "Status (active|reviewed)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teacher/homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.HomeworkFilter{
		TeacherID: claims.UserID,
		ClassName: c.Query("class"),
		Section:   c.Query("section"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.HomeworkStatus(raw)
		filter.Status = &status
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Update godoc
// @Summary Update homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Homework ID"
// @Param payload body models.UpdateHomeworkRequest true "Homework payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/homework/{id} [patch]
func (h *HomeworkHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid homework payload"))
		return
	}

	hw, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, hw, nil)
}

// Delete godoc
// @Summary Delete homework
// @Tags Homework
// @Produce json
// @Param id path string true "Homework ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/homework/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
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
