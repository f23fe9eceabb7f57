package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/service"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students     *service.StudentService
	certificates *service.CertificateService
}

// NewStudentHandler constructs handler.
func NewStudentHandler(students *service.StudentService, certificates *service.CertificateService) *StudentHandler {
	return &StudentHandler{students: students, certificates: certificates}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param career query string false "Filter by career code"
// @Param search query string false "Search by name, email or student id"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	filter := models.StudentFilter{
		CareerCode: c.Query("career"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	}
	students, total, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get a student by id
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Update godoc
// @Summary Update a student's career assignment
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student id"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Dashboard godoc
// @Summary Dashboard of the authenticated student
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/dashboard [get]
func (h *StudentHandler) Dashboard(c *gin.Context) {
	student, err := h.currentStudent(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	dashboard, err := h.students.Dashboard(c.Request.Context(), student.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Certificate godoc
// @Summary Download the regular-student certificate
// @Tags Students
// @Produce octet-stream
// @Success 200 {file} binary
// @Router /students/me/certificate [get]
func (h *StudentHandler) Certificate(c *gin.Context) {
	student, err := h.currentStudent(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.certificates.RegularStudentCertificate(c.Request.Context(), student.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, "certificate-"+student.StudentID+".pdf", "application/pdf", payload)
}

func (h *StudentHandler) currentStudent(c *gin.Context) (*models.Student, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return h.students.GetByUserID(c.Request.Context(), claims.UserID)
}
