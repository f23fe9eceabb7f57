package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academia-dev/academia-api/internal/service"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/response"
)

// EnrollmentHandler exposes inscription endpoints for the authenticated
// student. Every mutation invalidates the student's cached dashboard and
// records the decision outcome.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	students    *service.StudentService
	metrics     *service.MetricsService
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, students *service.StudentService, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, students: students, metrics: metrics}
}

// EnrollSubjectRequest is the subject-enrollment payload.
type EnrollSubjectRequest struct {
	SubjectCode string `json:"subject_code" binding:"required"`
}

// EnrollFinalRequest is the final-exam registration payload.
type EnrollFinalRequest struct {
	FinalExamID string `json:"final_exam_id" binding:"required"`
}

// EnrollSubject godoc
// @Summary Enroll the authenticated student in a subject
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body EnrollSubjectRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /students/me/inscriptions/subjects [post]
func (h *EnrollmentHandler) EnrollSubject(c *gin.Context) {
	var req EnrollSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	studentID, err := h.currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	inscription, err := h.enrollments.EnrollInSubject(c.Request.Context(), studentID, req.SubjectCode)
	if err != nil {
		h.metrics.IncEnrollmentDecision("subject", decisionOutcome(err))
		response.Error(c, err)
		return
	}
	h.metrics.IncEnrollmentDecision("subject", "accepted")
	h.students.InvalidateDashboard(c.Request.Context(), studentID)
	response.Created(c, inscription)
}

// WithdrawSubject godoc
// @Summary Withdraw the authenticated student from a subject
// @Tags Enrollments
// @Produce json
// @Param code path string true "Subject code"
// @Success 204
// @Router /students/me/inscriptions/subjects/{code} [delete]
func (h *EnrollmentHandler) WithdrawSubject(c *gin.Context) {
	studentID, err := h.currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.RemoveSubjectInscription(c.Request.Context(), studentID, c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	h.students.InvalidateDashboard(c.Request.Context(), studentID)
	response.NoContent(c)
}

// EnrollFinal godoc
// @Summary Register the authenticated student for a final exam
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body EnrollFinalRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /students/me/inscriptions/finals [post]
func (h *EnrollmentHandler) EnrollFinal(c *gin.Context) {
	var req EnrollFinalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	studentID, err := h.currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	inscription, err := h.enrollments.EnrollInFinal(c.Request.Context(), studentID, req.FinalExamID)
	if err != nil {
		h.metrics.IncEnrollmentDecision("final", decisionOutcome(err))
		response.Error(c, err)
		return
	}
	h.metrics.IncEnrollmentDecision("final", "accepted")
	h.students.InvalidateDashboard(c.Request.Context(), studentID)
	response.Created(c, inscription)
}

// WithdrawFinal godoc
// @Summary Withdraw the authenticated student from a final exam
// @Tags Enrollments
// @Produce json
// @Param id path string true "Final exam id"
// @Success 204
// @Router /students/me/inscriptions/finals/{id} [delete]
func (h *EnrollmentHandler) WithdrawFinal(c *gin.Context) {
	studentID, err := h.currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.RemoveFinalInscription(c.Request.Context(), studentID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.students.InvalidateDashboard(c.Request.Context(), studentID)
	response.NoContent(c)
}

// AvailableSubjects godoc
// @Summary Subjects of the student's career still open for enrollment
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/available-subjects [get]
func (h *EnrollmentHandler) AvailableSubjects(c *gin.Context) {
	studentID, err := h.currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	subjects, err := h.enrollments.AvailableSubjects(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// AvailableFinals godoc
// @Summary Final exams the student is eligible to register for
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/available-finals [get]
func (h *EnrollmentHandler) AvailableFinals(c *gin.Context) {
	studentID, err := h.currentStudentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	finals, err := h.enrollments.AvailableFinals(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, finals, nil)
}

func (h *EnrollmentHandler) currentStudentID(c *gin.Context) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}
	student, err := h.students.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		return "", err
	}
	return student.StudentID, nil
}

// decisionOutcome extracts the rejection reason from a conflict error so the
// counter label matches the eligibility reason constants.
func decisionOutcome(err error) string {
	appErr := appErrors.FromError(err)
	if appErr.Code == appErrors.ErrConflict.Code {
		return appErr.Message
	}
	return "error"
}
