package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// OverviewHandler wires HTTP endpoints to the overview service.
type OverviewHandler struct {
	service *service.OverviewService
}

// NewOverviewHandler creates a new handler.
func NewOverviewHandler(svc *service.OverviewService) *OverviewHandler {
	return &OverviewHandler{service: svc}
}

// Teacher godoc
// @Summary Teacher dashboard overview
// @Description Aggregated counters plus recent activity. The meta block reports whether the payload came from cache.
// @Tags Overview
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teacher/overview [get]
func (h *OverviewHandler) Teacher(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	overview, hit, err := h.service.Teacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, overview, nil, map[string]interface{}{"cache_hit": hit})
}
