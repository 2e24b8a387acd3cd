package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

func TestStudentCreateAndDuplicateIndexNumber(t *testing.T) {
	store := newStoreForTest(t)
	svc := NewStudentService(store, nil, nil)
	ctx := context.Background()

	student, err := svc.Create(ctx, CreateStudentRequest{Name: "  Kasun Perera ", IndexNumber: "ST001", Class: "10-A"})
	require.NoError(t, err)
	assert.Equal(t, "Kasun Perera", student.Name)
	assert.NotEmpty(t, student.ID)

	_, err = svc.Create(ctx, CreateStudentRequest{Name: "Someone Else", IndexNumber: "ST001", Class: "10-B"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentCreateValidation(t *testing.T) {
	svc := NewStudentService(newStoreForTest(t), nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{Name: "No Class", IndexNumber: "ST003"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdatePartialFields(t *testing.T) {
	store := newStoreForTest(t)
	svc := NewStudentService(store, nil, nil)
	ctx := context.Background()

	student, err := svc.Create(ctx, CreateStudentRequest{Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A", Contact: "011-1234567"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, student.ID, UpdateStudentRequest{Class: "11-A"})
	require.NoError(t, err)
	assert.Equal(t, "11-A", updated.Class)
	assert.Equal(t, "Kasun Perera", updated.Name)
	assert.Equal(t, "011-1234567", updated.Contact)

	_, err = svc.Update(ctx, "missing", UpdateStudentRequest{Name: "X"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentDeleteCascades(t *testing.T) {
	store := newStoreForTest(t)
	svc := NewStudentService(store, nil, nil)
	academics := NewAcademicService(store, "Maths", nil, nil)
	ctx := context.Background()

	student, err := svc.Create(ctx, CreateStudentRequest{Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	require.NoError(t, err)
	_, err = academics.Create(ctx, CreateAcademicRecordRequest{StudentID: student.ID, Type: "termtest", Term: "first", Marks: intp(70)})
	require.NoError(t, err)
	store.SetAttendanceStatus("2025-09-01", student.ID, models.AttendancePresent)

	require.NoError(t, svc.Delete(ctx, student.ID))

	assert.Empty(t, academics.List(ctx, models.AcademicFilter{}))
	assert.Equal(t, 0, store.DaysHeld())
	assert.Error(t, svc.Delete(ctx, student.ID))
}

func TestStudentListSearchAndPagination(t *testing.T) {
	store := newStoreForTest(t)
	svc := NewStudentService(store, nil, nil)
	ctx := context.Background()

	names := []string{"Kasun Perera", "Nimali Silva", "Kasuni Fernando"}
	for i, name := range names {
		_, err := svc.Create(ctx, CreateStudentRequest{Name: name, IndexNumber: "ST00" + string(rune('1'+i)), Class: "10-A"})
		require.NoError(t, err)
	}

	matched, pagination := svc.List(ctx, models.StudentFilter{Search: "kasun"})
	assert.Len(t, matched, 2)
	assert.Equal(t, 2, pagination.TotalCount)

	page, pagination := svc.List(ctx, models.StudentFilter{Page: 2, PageSize: 2})
	assert.Len(t, page, 1)
	assert.Equal(t, 3, pagination.TotalCount)

	byIndex, _ := svc.List(ctx, models.StudentFilter{Search: "st002"})
	require.Len(t, byIndex, 1)
	assert.Equal(t, "Nimali Silva", byIndex[0].Name)
}
