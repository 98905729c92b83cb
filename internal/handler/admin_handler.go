package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/response"
)

// AdminHandler serves roster and account administration.
type AdminHandler struct {
	students *service.StudentService
	users    *service.UserService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(students *service.StudentService, users *service.UserService) *AdminHandler {
	return &AdminHandler{students: students, users: users}
}

// ListStudents godoc
// @Summary List students
// @Tags Admin
// @Produce json
// @Param search query string false "Name search"
// @Param class query string false "Class name"
// @Param section query string false "Section"
// @Param active query bool false "Active flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	filter := models.StudentFilter{
		Search:    c.Query("search"),
		ClassName: c.Query("class"),
		Section:   c.Query("section"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}

	students, total, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, students, pagination)
}

// GetStudent godoc
// @Summary Get student
// @Tags Admin
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id} [get]
func (h *AdminHandler) GetStudent(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, student, nil)
}

// CreateStudent godoc
// @Summary Register student
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/students [post]
func (h *AdminHandler) CreateStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}

	student, err := h.students.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent godoc
// @Summary Update student
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id} [patch]
func (h *AdminHandler) UpdateStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}

	student, err := h.students.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, student, nil)
}

// DeleteStudent godoc
// @Summary Remove student from roster
// @Tags Admin
// @Produce json
// @Param id path string true "Student ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id} [delete]
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.students.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListUsers godoc
// @Summary List portal accounts
// @Tags Admin
// @Produce json
// @Param role query string false "Role"
// @Param active query bool false "Active flag"
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := models.UserFilter{
		Search:    c.Query("search"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		if !role.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown role"))
			return
		}
		filter.Role = &role
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}

	users, total, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, users, pagination)
}

// SetUserActive godoc
// @Summary Activate or deactivate an account
// @Description Admins cannot deactivate their own account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body map[string]bool true "Active flag"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/users/{id}/active [put]
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "active flag required"))
		return
	}

	user, err := h.users.SetActive(c.Request.Context(), claims.UserID, c.Param("id"), *payload.Active)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, user, nil)
}
