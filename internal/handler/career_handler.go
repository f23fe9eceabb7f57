package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academia-dev/academia-api/internal/service"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/response"
)

// CareerHandler exposes career endpoints.
type CareerHandler struct {
	careers *service.CareerService
}

// NewCareerHandler constructs handler.
func NewCareerHandler(careers *service.CareerService) *CareerHandler {
	return &CareerHandler{careers: careers}
}

// List godoc
// @Summary List careers
// @Tags Careers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /careers [get]
func (h *CareerHandler) List(c *gin.Context) {
	careers, err := h.careers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, careers, nil)
}

// Get godoc
// @Summary Get a career by code
// @Tags Careers
// @Produce json
// @Param code path string true "Career code"
// @Success 200 {object} response.Envelope
// @Router /careers/{code} [get]
func (h *CareerHandler) Get(c *gin.Context) {
	career, err := h.careers.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, career, nil)
}

// Subjects godoc
// @Summary List the curriculum of a career
// @Tags Careers
// @Produce json
// @Param code path string true "Career code"
// @Success 200 {object} response.Envelope
// @Router /careers/{code}/subjects [get]
func (h *CareerHandler) Subjects(c *gin.Context) {
	subjects, err := h.careers.Subjects(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Create godoc
// @Summary Create a career
// @Tags Careers
// @Accept json
// @Produce json
// @Param payload body service.CreateCareerRequest true "Career payload"
// @Success 201 {object} response.Envelope
// @Router /careers [post]
func (h *CareerHandler) Create(c *gin.Context) {
	var req service.CreateCareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	career, err := h.careers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, career)
}

// Update godoc
// @Summary Update a career
// @Tags Careers
// @Accept json
// @Produce json
// @Param code path string true "Career code"
// @Param payload body service.UpdateCareerRequest true "Career payload"
// @Success 200 {object} response.Envelope
// @Router /careers/{code} [put]
func (h *CareerHandler) Update(c *gin.Context) {
	var req service.UpdateCareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	career, err := h.careers.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, career, nil)
}

// Delete godoc
// @Summary Delete a career without enrolled students
// @Tags Careers
// @Param code path string true "Career code"
// @Success 204
// @Router /careers/{code} [delete]
func (h *CareerHandler) Delete(c *gin.Context) {
	if err := h.careers.Delete(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
