package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// ContactHandler serves the public contact form.
type ContactHandler struct {
	service *service.ContactService
}

// NewContactHandler creates a new handler.
func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// Submit godoc
// @Summary Submit contact form
// @Description Relays the message to the configured form backend
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body models.ContactRequest true "Contact payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /public/contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact payload"))
		return
	}

	if err := h.service.Submit(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, gin.H{"message": "thanks, we will get back to you soon"}, nil)
}
