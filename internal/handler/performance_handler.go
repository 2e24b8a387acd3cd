package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nipuna-lk/edutrack-api/internal/service"
	"github.com/nipuna-lk/edutrack-api/pkg/response"
)

// PerformanceHandler exposes overall performance endpoints.
type PerformanceHandler struct {
	performance *service.PerformanceService
}

// NewPerformanceHandler constructs PerformanceHandler.
func NewPerformanceHandler(performance *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performance: performance}
}

// Overall godoc
// @Summary Overall performance score for one student
// @Tags Performance
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /performance/students/{id} [get]
func (h *PerformanceHandler) Overall(c *gin.Context) {
	overall, err := h.performance.Overall(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overall, nil)
}

// Summaries godoc
// @Summary Performance summaries, optionally scoped to a class
// @Tags Performance
// @Produce json
// @Param class query string false "Class"
// @Success 200 {object} response.Envelope
// @Router /performance [get]
func (h *PerformanceHandler) Summaries(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.performance.Summaries(c.Request.Context(), c.Query("class")), nil)
}
