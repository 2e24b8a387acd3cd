package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	"github.com/nipuna-lk/edutrack-api/internal/service"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
	"github.com/nipuna-lk/edutrack-api/pkg/response"
)

// AcademicHandler exposes academic record endpoints.
type AcademicHandler struct {
	academics *service.AcademicService
}

// NewAcademicHandler constructs AcademicHandler.
func NewAcademicHandler(academics *service.AcademicService) *AcademicHandler {
	return &AcademicHandler{academics: academics}
}

// List godoc
// @Summary List academic records
// @Tags Academics
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param type query string false "assignment or termtest"
// @Param subject query string false "Filter by subject"
// @Param term query string false "first, second or third"
// @Success 200 {object} response.Envelope
// @Router /academics [get]
func (h *AcademicHandler) List(c *gin.Context) {
	filter := models.AcademicFilter{
		StudentID: c.Query("studentId"),
		Type:      models.RecordType(c.Query("type")),
		Subject:   c.Query("subject"),
		Term:      models.Term(c.Query("term")),
	}
	response.JSON(c, http.StatusOK, h.academics.List(c.Request.Context(), filter), nil)
}

// Create godoc
// @Summary Create an academic record
// @Tags Academics
// @Accept json
// @Produce json
// @Param payload body service.CreateAcademicRecordRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Router /academics [post]
func (h *AcademicHandler) Create(c *gin.Context) {
	var req service.CreateAcademicRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rec, err := h.academics.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// Update godoc
// @Summary Update an academic record's marks
// @Tags Academics
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdateAcademicRecordRequest true "Marks payload"
// @Success 200 {object} response.Envelope
// @Router /academics/{id} [put]
func (h *AcademicHandler) Update(c *gin.Context) {
	var req service.UpdateAcademicRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rec, err := h.academics.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// Delete godoc
// @Summary Delete an academic record
// @Tags Academics
// @Param id path string true "Record ID"
// @Success 204
// @Router /academics/{id} [delete]
func (h *AcademicHandler) Delete(c *gin.Context) {
	if err := h.academics.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignmentTable godoc
// @Summary Assignment marks table for a class, subject and term
// @Tags Academics
// @Produce json
// @Param class query string false "Class"
// @Param subject query string false "Subject"
// @Param term query string true "first, second or third"
// @Success 200 {object} response.Envelope
// @Router /academics/tables/assignments [get]
func (h *AcademicHandler) AssignmentTable(c *gin.Context) {
	rows, err := h.academics.AssignmentTable(c.Request.Context(), c.Query("class"), c.Query("subject"), models.Term(c.DefaultQuery("term", "first")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// TermTestTable godoc
// @Summary Term test marks table for a class and subject
// @Tags Academics
// @Produce json
// @Param class query string false "Class"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Router /academics/tables/termtests [get]
func (h *AcademicHandler) TermTestTable(c *gin.Context) {
	rows, err := h.academics.TermTestTable(c.Request.Context(), c.Query("class"), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// LegacyGrades godoc
// @Summary Superseded flat grade entries (read-only)
// @Tags Academics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academics/legacy-grades [get]
func (h *AcademicHandler) LegacyGrades(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.academics.LegacyGrades(c.Request.Context()), nil)
}
