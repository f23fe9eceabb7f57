package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/service"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/response"
)

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades     *service.GradeService
	professors *service.ProfessorService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService, professors *service.ProfessorService) *GradeHandler {
	return &GradeHandler{grades: grades, professors: professors}
}

// SubjectGrades godoc
// @Summary Grade roster of a subject, backfilling missing rows
// @Tags Grades
// @Produce json
// @Param code path string true "Subject code"
// @Success 200 {object} response.Envelope
// @Router /subjects/{code}/grades [get]
func (h *GradeHandler) SubjectGrades(c *gin.Context) {
	grades, err := h.grades.SubjectGradesWithBackfill(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Get godoc
// @Summary Get a grade by id
// @Tags Grades
// @Produce json
// @Param id path string true "Grade id"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	grade, err := h.grades.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Update godoc
// @Summary Update a grade
// @Description Professors may only grade inscribed students of their own
// @Description subjects; administrators may edit any grade.
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Grade id"
// @Param payload body service.UpdateGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	var req service.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.Role == models.RoleProfessor {
		grade, err := h.grades.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		professor, err := h.professors.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := h.grades.ValidateEditPermissions(c.Request.Context(), grade, professor.ProfessorID); err != nil {
			response.Error(c, err)
			return
		}
	}

	grade, err := h.grades.UpdateGrade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
