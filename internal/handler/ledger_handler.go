package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	"github.com/nipuna-lk/edutrack-api/internal/service"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
	"github.com/nipuna-lk/edutrack-api/pkg/response"
)

// LedgerHandler exposes the editable marks grid.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Rows godoc
// @Summary Current ledger rows with edit state
// @Tags Ledger
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ledger [get]
func (h *LedgerHandler) Rows(c *gin.Context) {
	meta := map[string]interface{}{}
	if editing := h.ledger.EditingState(); editing != nil {
		meta["editing"] = editing
	}
	response.JSON(c, http.StatusOK, h.ledger.Rows(c.Request.Context()), nil, meta)
}

// Rebuild godoc
// @Summary Rebuild the ledger from academic records
// @Tags Ledger
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ledger/rebuild [post]
func (h *LedgerHandler) Rebuild(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.ledger.Rebuild(c.Request.Context()), nil)
}

// AddRow godoc
// @Summary Append an empty ledger row
// @Tags Ledger
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /ledger/rows [post]
func (h *LedgerHandler) AddRow(c *gin.Context) {
	response.Created(c, h.ledger.AddRow(c.Request.Context()))
}

// DuplicateRow godoc
// @Summary Duplicate a ledger row
// @Tags Ledger
// @Produce json
// @Param id path string true "Row ID"
// @Success 201 {object} response.Envelope
// @Router /ledger/rows/{id}/duplicate [post]
func (h *LedgerHandler) DuplicateRow(c *gin.Context) {
	row, err := h.ledger.DuplicateRow(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// DeleteRow godoc
// @Summary Delete a ledger row
// @Tags Ledger
// @Param id path string true "Row ID"
// @Success 204
// @Router /ledger/rows/{id} [delete]
func (h *LedgerHandler) DeleteRow(c *gin.Context) {
	if err := h.ledger.DeleteRow(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// OpenCellRequest selects the cell to edit.
type OpenCellRequest struct {
	Field models.LedgerField `json:"field"`
}

// OpenCell godoc
// @Summary Open a cell for editing, committing any previous open cell
// @Tags Ledger
// @Accept json
// @Produce json
// @Param id path string true "Row ID"
// @Param payload body OpenCellRequest true "Cell address"
// @Success 200 {object} response.Envelope
// @Router /ledger/rows/{id}/edit [post]
func (h *LedgerHandler) OpenCell(c *gin.Context) {
	var req OpenCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	state, err := h.ledger.OpenCell(c.Request.Context(), c.Param("id"), req.Field)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// CellValueRequest carries a staged or committed cell value.
type CellValueRequest struct {
	Value string `json:"value"`
}

// StageValue godoc
// @Summary Replace the staged value of the open cell
// @Tags Ledger
// @Accept json
// @Success 204
// @Param payload body CellValueRequest true "Staged value"
// @Router /ledger/edit/stage [put]
func (h *LedgerHandler) StageValue(c *gin.Context) {
	var req CellValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.ledger.StageValue(c.Request.Context(), req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CommitCell godoc
// @Summary Commit a value to the open cell
// @Tags Ledger
// @Accept json
// @Produce json
// @Param payload body CellValueRequest true "Committed value"
// @Success 200 {object} response.Envelope
// @Router /ledger/edit/commit [post]
func (h *LedgerHandler) CommitCell(c *gin.Context) {
	var req CellValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.ledger.CommitCell(c.Request.Context(), req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.ledger.Rows(c.Request.Context()), nil)
}

// CancelEdit godoc
// @Summary Discard the open edit
// @Tags Ledger
// @Success 204
// @Router /ledger/edit [delete]
func (h *LedgerHandler) CancelEdit(c *gin.Context) {
	h.ledger.CancelEdit(c.Request.Context())
	response.NoContent(c)
}
