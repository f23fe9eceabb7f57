package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/service"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/response"
)

// ProfessorHandler exposes professor endpoints.
type ProfessorHandler struct {
	professors *service.ProfessorService
}

// NewProfessorHandler constructs handler.
func NewProfessorHandler(professors *service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{professors: professors}
}

// List godoc
// @Summary List professors
// @Tags Professors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /professors [get]
func (h *ProfessorHandler) List(c *gin.Context) {
	professors, err := h.professors.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professors, nil)
}

// Get godoc
// @Summary Get a professor by id
// @Tags Professors
// @Produce json
// @Param id path string true "Professor id"
// @Success 200 {object} response.Envelope
// @Router /professors/{id} [get]
func (h *ProfessorHandler) Get(c *gin.Context) {
	professor, err := h.professors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Dashboard godoc
// @Summary Dashboard of the authenticated professor
// @Tags Professors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /professors/me/dashboard [get]
func (h *ProfessorHandler) Dashboard(c *gin.Context) {
	professor, err := h.currentProfessor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	dashboard, err := h.professors.Dashboard(c.Request.Context(), professor.ProfessorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// ExamInscriptions godoc
// @Summary Roster of a final exam the authenticated professor sits on
// @Tags Professors
// @Produce json
// @Param id path string true "Final exam id"
// @Success 200 {object} response.Envelope
// @Router /professors/me/finals/{id}/inscriptions [get]
func (h *ProfessorHandler) ExamInscriptions(c *gin.Context) {
	professor, err := h.currentProfessor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	inscriptions, err := h.professors.ExamInscriptions(c.Request.Context(), professor.ProfessorID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inscriptions, nil)
}

func (h *ProfessorHandler) currentProfessor(c *gin.Context) (*models.Professor, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return h.professors.GetByUserID(c.Request.Context(), claims.UserID)
}
