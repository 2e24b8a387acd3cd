package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	"github.com/nipuna-lk/edutrack-api/internal/repository"
	"github.com/nipuna-lk/edutrack-api/internal/service"
)

func newLedgerHandlerFixture(t *testing.T) *LedgerHandler {
	t.Helper()
	store := repository.NewStore(&handlerBlob{data: map[string][]byte{}}, 200, "2025-08-28", nil)
	require.NoError(t, store.Load(context.Background()))
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	return NewLedgerHandler(service.NewLedgerService(store, "Maths", nil))
}

func TestLedgerHandlerEditFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newLedgerHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/ledger/rows", nil)
	c.Request = req
	handler.AddRow(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.LedgerRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	rowID := created.Data.ID
	require.NotEmpty(t, rowID)
	assert.True(t, created.Data.IsNew)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodPost, "/ledger/rows/"+rowID+"/edit", bytes.NewBufferString(`{"field":{"kind":"studentName"}}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: rowID}}
	handler.OpenCell(c)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodPost, "/ledger/edit/commit", bytes.NewBufferString(`{"value":"Kasun Perera"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler.CommitCell(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kasun Perera")
}

func TestLedgerHandlerCommitWithoutOpenCell(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newLedgerHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/ledger/edit/commit", bytes.NewBufferString(`{"value":"10"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler.CommitCell(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLedgerHandlerDeleteMissingRow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newLedgerHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/ledger/rows/none", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "none"}}
	handler.DeleteRow(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
