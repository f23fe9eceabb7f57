package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academia-dev/academia-api/internal/service"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/response"
)

// SubjectHandler exposes subject endpoints, including the professor roster
// and the exported grade sheets.
type SubjectHandler struct {
	subjects     *service.SubjectService
	assignments  *service.AssignmentService
	finals       *service.FinalExamService
	certificates *service.CertificateService
}

// NewSubjectHandler constructs handler.
func NewSubjectHandler(subjects *service.SubjectService, assignments *service.AssignmentService, finals *service.FinalExamService, certificates *service.CertificateService) *SubjectHandler {
	return &SubjectHandler{subjects: subjects, assignments: assignments, finals: finals, certificates: certificates}
}

// AssignProfessorsRequest carries the requested professor roster.
type AssignProfessorsRequest struct {
	ProfessorIDs []string `json:"professor_ids"`
}

// List godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.subjects.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Get godoc
// @Summary Get a subject by code
// @Tags Subjects
// @Produce json
// @Param code path string true "Subject code"
// @Success 200 {object} response.Envelope
// @Router /subjects/{code} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.subjects.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Create godoc
// @Summary Create a subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req service.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.subjects.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Update godoc
// @Summary Update a subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param code path string true "Subject code"
// @Param payload body service.UpdateSubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /subjects/{code} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req service.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.subjects.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Delete godoc
// @Summary Delete a subject without inscriptions
// @Tags Subjects
// @Param code path string true "Subject code"
// @Success 204
// @Router /subjects/{code} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.subjects.Delete(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Professors godoc
// @Summary List professors assigned to a subject
// @Tags Subjects
// @Produce json
// @Param code path string true "Subject code"
// @Success 200 {object} response.Envelope
// @Router /subjects/{code}/professors [get]
func (h *SubjectHandler) Professors(c *gin.Context) {
	ids, err := h.assignments.SubjectProfessors(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"professor_ids": ids}, nil)
}

// AssignProfessors godoc
// @Summary Reconcile the professor roster of a subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param code path string true "Subject code"
// @Param payload body AssignProfessorsRequest true "Requested roster"
// @Success 200 {object} response.Envelope
// @Router /subjects/{code}/professors [put]
func (h *SubjectHandler) AssignProfessors(c *gin.Context) {
	var req AssignProfessorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.assignments.ReconcileSubjectProfessors(c.Request.Context(), c.Param("code"), req.ProfessorIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// FinalExams godoc
// @Summary List final exams scheduled for a subject
// @Tags Subjects
// @Produce json
// @Param code path string true "Subject code"
// @Success 200 {object} response.Envelope
// @Router /subjects/{code}/finals [get]
func (h *SubjectHandler) FinalExams(c *gin.Context) {
	exams, err := h.finals.ListBySubject(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// ExportRoster godoc
// @Summary Export the grade roster of a subject
// @Tags Subjects
// @Produce octet-stream
// @Param code path string true "Subject code"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /subjects/{code}/roster/export [get]
func (h *SubjectHandler) ExportRoster(c *gin.Context) {
	code := c.Param("code")
	if _, err := h.subjects.Get(c.Request.Context(), code); err != nil {
		response.Error(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.certificates.SubjectRosterCSV(c.Request.Context(), code)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "roster-"+code+".csv", "text/csv", payload)
	case "pdf":
		payload, err := h.certificates.SubjectRosterPDF(c.Request.Context(), code)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "roster-"+code+".pdf", "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
	}
}
