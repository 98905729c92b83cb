package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// ProfileHandler wires HTTP endpoints to the profile service.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// Get godoc
// @Summary Own profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Update own profile
// @Description Only phone and bio are self-editable
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.UpdateTeacherProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/profile [patch]
func (h *ProfileHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateTeacherProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.service.UpdateSelf(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// UploadAvatar godoc
// @Summary Upload avatar image
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "an image file is required"))
		return
	}

	profile, err := h.service.UploadAvatar(c.Request.Context(), claims.UserID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// AdminUpsert godoc
// @Summary Seed or replace a teacher profile
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.TeacherProfile true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/teacher-profiles [put]
func (h *ProfileHandler) AdminUpsert(c *gin.Context) {
	var profile models.TeacherProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	saved, err := h.service.UpsertAdmin(c.Request.Context(), &profile)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, saved, nil)
}
