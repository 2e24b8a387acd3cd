package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/models"
)

func TestAutosaveTickIdleWritesNothing(t *testing.T) {
	store := newStoreForTest(t)
	svc := NewAutosaveService(store, nil, time.Second, true, nil, nil)

	saved, err := svc.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, saved)
	assert.True(t, store.LastSaved().IsZero())
}

func TestAutosaveTickFlushesDirtyState(t *testing.T) {
	store := newStoreForTest(t)
	svc := NewAutosaveService(store, nil, time.Second, true, nil, nil)

	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	require.True(t, store.Dirty())

	saved, err := svc.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.False(t, store.Dirty())
	assert.False(t, store.LastSaved().IsZero())

	// Next tick has nothing to do.
	saved, err = svc.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestAutosaveTickForceCommitsOpenEdit(t *testing.T) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	ledger := NewLedgerService(store, "Maths", nil)
	svc := NewAutosaveService(store, ledger, time.Second, true, nil, nil)
	ctx := context.Background()

	row := ledger.AddRow(ctx)
	require.NoError(t, store.Flush(ctx))

	_, err := ledger.OpenCell(ctx, row.ID, models.LedgerField{Kind: models.LedgerFieldName})
	require.NoError(t, err)
	require.NoError(t, ledger.StageValue(ctx, "Kasun Perera"))

	saved, err := svc.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Nil(t, ledger.EditingState())

	got, ok := ledgerRowByID(ledger.Rows(ctx), row.ID)
	require.True(t, ok)
	assert.Equal(t, "Kasun Perera", got.StudentName)
}

func TestAutosaveStatus(t *testing.T) {
	store := newStoreForTest(t)
	ledger := NewLedgerService(store, "Maths", nil)
	svc := NewAutosaveService(store, ledger, 30*time.Second, true, nil, nil)
	ctx := context.Background()

	status := svc.Status()
	assert.True(t, status.Enabled)
	assert.Equal(t, "30s", status.Interval)
	assert.False(t, status.Dirty)
	assert.False(t, status.Editing)
	assert.Nil(t, status.LastSaved)

	row := ledger.AddRow(ctx)
	_, err := ledger.OpenCell(ctx, row.ID, models.LedgerField{Kind: models.LedgerFieldName})
	require.NoError(t, err)

	status = svc.Status()
	assert.True(t, status.Dirty)
	assert.True(t, status.Editing)

	_, err = svc.SaveNow(ctx)
	require.NoError(t, err)
	status = svc.Status()
	assert.False(t, status.Dirty)
	assert.NotNil(t, status.LastSaved)
}

func TestAutosaveStartDisabledDoesNothing(t *testing.T) {
	store := newStoreForTest(t)
	svc := NewAutosaveService(store, nil, time.Second, false, nil, nil)
	svc.Start(context.Background())
	svc.Stop(context.Background())
}
