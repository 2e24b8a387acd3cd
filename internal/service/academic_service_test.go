package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

func intp(v int) *int { return &v }

func TestAcademicCreateComputesGrade(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAcademicService(store, "Science", nil, nil)

	rec, err := svc.Create(context.Background(), CreateAcademicRecordRequest{
		StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(15), AssignmentNumber: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Science", rec.Subject)
	assert.Equal(t, 20, rec.MaxMarks)
	// 15/20 = 75% sits exactly on the A threshold.
	assert.Equal(t, models.GradeA, rec.Grade)
	assert.Equal(t, "Kasun Perera", rec.StudentName)
	assert.Equal(t, "10-A", rec.Class)
}

func TestAcademicCreateRejectsOutOfRangeMarks(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAcademicService(store, "", nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(21), AssignmentNumber: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "termtest", Term: "first", Marks: intp(101)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// Nothing was clamped or stored.
	assert.Empty(t, svc.List(ctx, models.AcademicFilter{}))
}

func TestAcademicCreateRejectsDuplicateSlot(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAcademicService(store, "Maths", nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(10), AssignmentNumber: 2})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(12), AssignmentNumber: 2})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// A different ordinal is a different slot.
	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(12), AssignmentNumber: 3})
	assert.NoError(t, err)

	// Term tests ignore the ordinal; the same term is a conflict.
	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "termtest", Term: "first", Marks: intp(70)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "termtest", Term: "first", Marks: intp(80)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAcademicUpdateRecomputesGrade(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAcademicService(store, "", nil, nil)
	ctx := context.Background()

	rec, err := svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "termtest", Term: "second", Marks: intp(40)})
	require.NoError(t, err)
	assert.Equal(t, models.GradeF, rec.Grade)

	updated, err := svc.Update(ctx, rec.ID, UpdateAcademicRecordRequest{Marks: intp(68)})
	require.NoError(t, err)
	assert.Equal(t, 68, updated.Marks)
	assert.Equal(t, models.GradeB, updated.Grade)

	_, err = svc.Update(ctx, rec.ID, UpdateAcademicRecordRequest{Marks: intp(120)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAcademicStatsSeparatesScales(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAcademicService(store, "Maths", nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(15), AssignmentNumber: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(18), AssignmentNumber: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "termtest", Term: "first", Marks: intp(70)})
	require.NoError(t, err)

	stats, err := svc.StatsFor(ctx, "s1")
	require.NoError(t, err)
	// Mean of 15 and 18 on the raw 0-20 scale, not rescaled.
	assert.Equal(t, 17, stats.AssignmentAvg)
	assert.Equal(t, 70, stats.TermTestAvg)
	assert.Equal(t, 3, stats.Total)
}

func TestAcademicAssignmentTableRescalesAverage(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	store.AddStudent(models.Student{ID: "s2", Name: "Nimali Silva", IndexNumber: "ST002", Class: "10-A"})
	svc := NewAcademicService(store, "Maths", nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(15), AssignmentNumber: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "assignment", Term: "first", Marks: intp(16), AssignmentNumber: 3})
	require.NoError(t, err)

	rows, err := svc.AssignmentTable(ctx, "10-A", "Maths", models.TermFirst)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[0]
	assert.Equal(t, "s1", row.StudentID)
	require.NotNil(t, row.Marks[0])
	assert.Equal(t, 15, *row.Marks[0])
	assert.Nil(t, row.Marks[1])
	require.NotNil(t, row.Marks[2])
	assert.Equal(t, 16, *row.Marks[2])
	assert.Equal(t, 31, row.Total)
	// Mean 15.5 on 0-20, rescaled by five to 77.5 and rounded to 78.
	require.NotNil(t, row.Average)
	assert.Equal(t, 78, *row.Average)
	assert.Equal(t, models.GradeA, row.Grade)

	// The second student has no marks: empty slots, no average, no grade.
	empty := rows[1]
	assert.Nil(t, empty.Average)
	assert.Empty(t, empty.Grade)
}

func TestAcademicTermTestTableColumnsByTerm(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAcademicService(store, "Maths", nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "termtest", Term: "first", Marks: intp(60)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateAcademicRecordRequest{StudentID: "s1", Type: "termtest", Term: "third", Marks: intp(81)})
	require.NoError(t, err)

	rows, err := svc.TermTestTable(ctx, "10-A", "Maths")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.NotNil(t, row.Marks[0])
	assert.Equal(t, 60, *row.Marks[0])
	assert.Nil(t, row.Marks[1])
	require.NotNil(t, row.Marks[2])
	assert.Equal(t, 81, *row.Marks[2])
	require.NotNil(t, row.Average)
	assert.Equal(t, 71, *row.Average)
	assert.Equal(t, models.GradeB, row.Grade)
}
