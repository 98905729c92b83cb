package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// MaterialHandler wires HTTP endpoints to the material service.
type MaterialHandler struct {
	service *service.MaterialService
	metrics *service.MetricsService
}

// NewMaterialHandler creates a new handler.
func NewMaterialHandler(svc *service.MaterialService, metrics *service.MetricsService) *MaterialHandler {
	return &MaterialHandler{service: svc, metrics: metrics}
}

// Upload godoc
// @Summary Upload study material
// @Description Multipart upload; the file is stored first and linked into the row
// @Tags Materials
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param subject formData string true "Subject"
// @Param class_name formData string true "Class name"
// @Param section formData string true "Section"
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/materials [post]
func (h *MaterialHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid material payload"))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a file is required"))
		return
	}

	material, err := h.service.Upload(c.Request.Context(), claims.UserID, req, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordUpload()
	response.Created(c, material)
}

// List godoc
// @Summary List own materials
// @Tags Materials
// @Produce json
// @Param class query string false "Class name"
// @Param section query string false "Section"
// @Param subject query string false "Subject"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teacher/materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.MaterialFilter{
		TeacherID: claims.UserID,
		ClassName: c.Query("class"),
		Section:   c.Query("section"),
		Subject:   c.Query("subject"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}
	materials, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, materials, pagination)
}

// Delete godoc
// @Summary Delete study material
// @Description Removes the row, then best-effort deletes the backing file
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
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

// StudentList godoc
// @Summary List materials for a class
// @Tags Students
// @Produce json
// @Param class query string true "Class name"
// @Param section query string true "Section"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Router /student/materials [get]
func (h *MaterialHandler) StudentList(c *gin.Context) {
	className := c.Query("class")
	section := c.Query("section")
	if className == "" || section == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class and section are required"))
		return
	}

	filter := models.MaterialFilter{
		ClassName: className,
		Section:   section,
		Subject:   c.Query("subject"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}
	materials, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, materials, pagination)
}
