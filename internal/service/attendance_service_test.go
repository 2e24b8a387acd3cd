package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

func TestAttendanceMarkAndStats(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	store.AddStudent(models.Student{ID: "s2", Name: "Nimali Silva", IndexNumber: "ST002", Class: "10-A"})
	svc := NewAttendanceService(store, nil, nil)
	ctx := context.Background()

	// Two held days; the student is present on the first and unmarked on the
	// second, so the percentage divides by the global count.
	require.NoError(t, svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-09-01", StudentID: "s1", Status: "present"}))
	require.NoError(t, svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-09-02", StudentID: "s2", Status: "present"}))

	stats, err := svc.StatsFor(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 0, stats.Absent)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 50, stats.Percentage)
}

func TestAttendanceStatsZeroDaysHeld(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAttendanceService(store, nil, nil)

	stats, err := svc.StatsFor(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Percentage)
}

func TestAttendanceMarkValidation(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAttendanceService(store, nil, nil)
	ctx := context.Background()

	err := svc.Mark(ctx, MarkAttendanceRequest{Date: "01/09/2025", StudentID: "s1", Status: "present"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-09-01", StudentID: "missing", Status: "present"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-09-01", StudentID: "s1", Status: "late"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceClearMark(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAttendanceService(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-09-01", StudentID: "s1", Status: "absent"}))
	require.NoError(t, svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-09-01", StudentID: "s1", Status: ""}))

	day, err := svc.Day(ctx, "2025-09-01")
	require.NoError(t, err)
	assert.Empty(t, day.Students)
	assert.Equal(t, 0, store.DaysHeld())
}

func TestAttendanceOverviewAndSettings(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	svc := NewAttendanceService(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-09-01", StudentID: "s1", Status: "present"}))
	require.NoError(t, svc.UpdateSettings(ctx, UpdateSettingsRequest{TotalSchoolDays: 180, StartDate: "2025-09-01"}))

	overview := svc.Overview(ctx)
	assert.Equal(t, 1, overview.DaysHeld)
	assert.Equal(t, 179, overview.AvailableDays)
	assert.Equal(t, 180, overview.TotalSchoolDays)
	assert.Equal(t, "2025-09-01", overview.StartDate)

	err := svc.UpdateSettings(ctx, UpdateSettingsRequest{StartDate: "September 1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
