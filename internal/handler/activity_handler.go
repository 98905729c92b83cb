package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// ActivityHandler wires HTTP endpoints to the activity service.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// Mine godoc
// @Summary Own activity feed
// @Tags Activity
// @Produce json
// @Param type query string false "Activity type"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teacher/activity [get]
func (h *ActivityHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ActivityFilter{
		UserID:   claims.UserID,
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if raw := c.Query("type"); raw != "" {
		typ := models.ActivityType(raw)
		filter.Type = &typ
	}

	entries, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, entries, pagination)
}
