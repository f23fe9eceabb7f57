package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academia-dev/academia-api/internal/service"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/response"
)

// FinalExamHandler exposes final-exam endpoints.
type FinalExamHandler struct {
	finals      *service.FinalExamService
	assignments *service.AssignmentService
}

// NewFinalExamHandler constructs handler.
func NewFinalExamHandler(finals *service.FinalExamService, assignments *service.AssignmentService) *FinalExamHandler {
	return &FinalExamHandler{finals: finals, assignments: assignments}
}

// List godoc
// @Summary List final exams
// @Tags FinalExams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /final-exams [get]
func (h *FinalExamHandler) List(c *gin.Context) {
	finals, err := h.finals.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, finals, nil)
}

// Get godoc
// @Summary Get a final exam by id
// @Tags FinalExams
// @Produce json
// @Param id path string true "Final exam id"
// @Success 200 {object} response.Envelope
// @Router /final-exams/{id} [get]
func (h *FinalExamHandler) Get(c *gin.Context) {
	exam, err := h.finals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Create a final exam
// @Tags FinalExams
// @Accept json
// @Produce json
// @Param payload body service.CreateFinalExamRequest true "Final exam payload"
// @Success 201 {object} response.Envelope
// @Router /final-exams [post]
func (h *FinalExamHandler) Create(c *gin.Context) {
	var req service.CreateFinalExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.finals.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update a final exam
// @Tags FinalExams
// @Accept json
// @Produce json
// @Param id path string true "Final exam id"
// @Param payload body service.UpdateFinalExamRequest true "Final exam payload"
// @Success 200 {object} response.Envelope
// @Router /final-exams/{id} [put]
func (h *FinalExamHandler) Update(c *gin.Context) {
	var req service.UpdateFinalExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.finals.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Delete godoc
// @Summary Delete a final exam without inscriptions
// @Tags FinalExams
// @Produce json
// @Param id path string true "Final exam id"
// @Success 204
// @Router /final-exams/{id} [delete]
func (h *FinalExamHandler) Delete(c *gin.Context) {
	if err := h.finals.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Inscriptions godoc
// @Summary List the inscriptions of a final exam
// @Tags FinalExams
// @Produce json
// @Param id path string true "Final exam id"
// @Success 200 {object} response.Envelope
// @Router /final-exams/{id}/inscriptions [get]
func (h *FinalExamHandler) Inscriptions(c *gin.Context) {
	inscriptions, err := h.finals.Inscriptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inscriptions, nil)
}

// Professors godoc
// @Summary List the exam board of a final exam
// @Tags FinalExams
// @Produce json
// @Param id path string true "Final exam id"
// @Success 200 {object} response.Envelope
// @Router /final-exams/{id}/professors [get]
func (h *FinalExamHandler) Professors(c *gin.Context) {
	ids, err := h.assignments.FinalExamProfessors(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"professor_ids": ids}, nil)
}

// AssignProfessors godoc
// @Summary Replace the exam board of a final exam
// @Tags FinalExams
// @Accept json
// @Produce json
// @Param id path string true "Final exam id"
// @Param payload body AssignProfessorsRequest true "Professor ids"
// @Success 200 {object} response.Envelope
// @Router /final-exams/{id}/professors [put]
func (h *FinalExamHandler) AssignProfessors(c *gin.Context) {
	var req AssignProfessorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.assignments.ReconcileFinalExamProfessors(c.Request.Context(), c.Param("id"), req.ProfessorIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
