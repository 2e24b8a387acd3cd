package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nipuna-lk/edutrack-api/internal/service"
	"github.com/nipuna-lk/edutrack-api/pkg/response"
)

// AutosaveHandler exposes the autosave loop status and manual save.
type AutosaveHandler struct {
	autosave *service.AutosaveService
}

// NewAutosaveHandler constructs AutosaveHandler.
func NewAutosaveHandler(autosave *service.AutosaveService) *AutosaveHandler {
	return &AutosaveHandler{autosave: autosave}
}

// Status godoc
// @Summary Autosave loop status
// @Tags Autosave
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /autosave [get]
func (h *AutosaveHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.autosave.Status(), nil)
}

// SaveNow godoc
// @Summary Flush pending changes immediately
// @Tags Autosave
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /autosave/save [post]
func (h *AutosaveHandler) SaveNow(c *gin.Context) {
	saved, err := h.autosave.SaveNow(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"saved": saved}, nil)
}
