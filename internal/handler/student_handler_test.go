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

	"github.com/nipuna-lk/edutrack-api/internal/repository"
	"github.com/nipuna-lk/edutrack-api/internal/service"
)

type handlerBlob struct {
	data map[string][]byte
}

func (b *handlerBlob) Get(_ context.Context, key string) ([]byte, error) {
	raw, ok := b.data[key]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}
	return raw, nil
}

func (b *handlerBlob) Set(_ context.Context, key string, value []byte) error {
	b.data[key] = value
	return nil
}

func (b *handlerBlob) Delete(_ context.Context, key string) error {
	delete(b.data, key)
	return nil
}

func newStudentHandlerFixture(t *testing.T) *StudentHandler {
	t.Helper()
	store := repository.NewStore(&handlerBlob{data: map[string][]byte{}}, 200, "2025-08-28", nil)
	require.NoError(t, store.Load(context.Background()))
	students := service.NewStudentService(store, nil, nil)
	attendance := service.NewAttendanceService(store, nil, nil)
	academics := service.NewAcademicService(store, "Maths", nil, nil)
	performance := service.NewPerformanceService(store, attendance, academics, nil)
	return NewStudentHandler(students, performance)
}

func TestStudentHandlerCreateAndSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload := bytes.NewBufferString(`{"name":"Kasun Perera","studentId":"ST001","class":"10-A"}`)
	req, _ := http.NewRequest(http.MethodPost, "/students", payload)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodGet, "/students/"+created.Data.ID+"/summary", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: created.Data.ID}}

	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"performance"`)
	assert.Contains(t, w.Body.String(), `"Poor"`)
}

func TestStudentHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewBufferString(`{"name":"Missing Class"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerGetMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/none", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "none"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
