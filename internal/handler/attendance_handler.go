package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nipuna-lk/edutrack-api/internal/service"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
	"github.com/nipuna-lk/edutrack-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Mark godoc
// @Summary Record or clear a daily attendance mark
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 204
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.attendance.Mark(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Day godoc
// @Summary Statuses recorded for one date
// @Tags Attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/{date} [get]
func (h *AttendanceHandler) Day(c *gin.Context) {
	day, err := h.attendance.Day(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// StudentStats godoc
// @Summary Attendance statistics for one student
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/students/{id} [get]
func (h *AttendanceHandler) StudentStats(c *gin.Context) {
	stats, err := h.attendance.StatsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Overview godoc
// @Summary Calendar-wide attendance overview
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/overview [get]
func (h *AttendanceHandler) Overview(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.attendance.Overview(c.Request.Context()), nil)
}

// UpdateSettings godoc
// @Summary Update academic year calendar settings
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/settings [put]
func (h *AttendanceHandler) UpdateSettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.attendance.UpdateSettings(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.attendance.Overview(c.Request.Context()), nil)
}
