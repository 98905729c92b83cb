package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// NoticeHandler wires HTTP endpoints to the notice service.
type NoticeHandler struct {
	service *service.NoticeService
}

// NewNoticeHandler creates a new handler.
func NewNoticeHandler(svc *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{service: svc}
}

// Create godoc
// @Summary Post notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param payload body models.CreateNoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	notice, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, notice)
}

// List godoc
// @Summary List own notices
// @Tags Notices
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teacher/notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.NoticeFilter{
		TeacherID: claims.UserID,
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}
	notices, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, notices, pagination)
}

// Update godoc
// @Summary Update notice
// @Tags Notices
// @Accept json
// @Produce json
// @Param id path string true "Notice ID"
// @Param payload body models.UpdateNoticeRequest true "Notice payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/notices/{id} [patch]
func (h *NoticeHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	notice, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, notice, nil)
}

// SetPublished godoc
// @Summary Publish or unpublish notice
// @Description Publishing an expired notice is refused with NOTICE_EXPIRED
// @Tags Notices
// @Accept json
// @Produce json
// @Param id path string true "Notice ID"
// @Param payload body map[string]bool true "Published flag"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /teacher/notices/{id}/publish [put]
func (h *NoticeHandler) SetPublished(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Published *bool `json:"published" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "published flag required"))
		return
	}

	notice, err := h.service.SetPublished(c.Request.Context(), claims.UserID, c.Param("id"), *payload.Published)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, notice, nil)
}

// Delete godoc
// @Summary Delete notice
// @Tags Notices
// @Produce json
// @Param id path string true "Notice ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
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

// PublicBoard godoc
// @Summary Public notice board
// @Description Published, unexpired notices addressed to everyone
// @Tags Public
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /public/notices [get]
func (h *NoticeHandler) PublicBoard(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	notices, total, err := h.service.PublicBoard(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, notices, pagination)
}

// StudentBoard godoc
// @Summary Student notice board
// @Description Published, unexpired notices for students
// @Tags Students
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /student/notices [get]
func (h *NoticeHandler) StudentBoard(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	notices, total, err := h.service.AudienceBoard(c.Request.Context(), models.NoticeAudienceStudents, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, notices, pagination)
}
