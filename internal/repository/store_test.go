package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/models"
)

type memoryBlobStore struct {
	data map[string][]byte
	sets int
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{data: map[string][]byte{}}
}

func (m *memoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return raw, nil
}

func (m *memoryBlobStore) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = append([]byte(nil), value...)
	m.sets++
	return nil
}

func (m *memoryBlobStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newTestStore(t *testing.T, blob *memoryBlobStore) *Store {
	store := NewStore(blob, 200, "2025-08-28", nil)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestStoreLoadDefaults(t *testing.T) {
	store := newTestStore(t, newMemoryBlobStore())

	assert.Empty(t, store.Students())
	assert.Equal(t, 200, store.TotalSchoolDays())
	assert.Equal(t, "2025-08-28", store.StartDate())
	assert.False(t, store.Dirty())
}

func TestStoreLoadExistingState(t *testing.T) {
	blob := newMemoryBlobStore()
	students := []models.Student{{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"}}
	raw, err := json.Marshal(students)
	require.NoError(t, err)
	blob.data[KeyStudents] = raw
	blob.data[KeyTotalSchoolDays] = []byte(`180`)

	store := newTestStore(t, blob)

	got := store.Students()
	require.Len(t, got, 1)
	assert.Equal(t, "Kasun Perera", got[0].Name)
	assert.Equal(t, 180, store.TotalSchoolDays())
}

func TestStoreFlushWritesOnlyDirtyKeys(t *testing.T) {
	blob := newMemoryBlobStore()
	store := newTestStore(t, blob)

	store.AddStudent(models.Student{ID: "s1", Name: "Nimali Silva", IndexNumber: "ST002", Class: "10-B"})
	require.True(t, store.Dirty())

	require.NoError(t, store.Flush(context.Background()))
	assert.Equal(t, 1, blob.sets)
	assert.Contains(t, blob.data, KeyStudents)
	assert.NotContains(t, blob.data, KeyAcademicRecords)
	assert.False(t, store.Dirty())
	assert.WithinDuration(t, time.Now(), store.LastSaved(), time.Second)

	// Nothing changed, so a second flush writes nothing.
	require.NoError(t, store.Flush(context.Background()))
	assert.Equal(t, 1, blob.sets)
}

func TestStoreDeleteStudentCascades(t *testing.T) {
	store := newTestStore(t, newMemoryBlobStore())

	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	store.AddStudent(models.Student{ID: "s2", Name: "Nimali Silva", IndexNumber: "ST002", Class: "10-A"})
	store.SetAttendanceStatus("2025-09-01", "s1", models.AttendancePresent)
	store.SetAttendanceStatus("2025-09-01", "s2", models.AttendanceAbsent)
	store.AddAcademicRecord(models.AcademicRecord{ID: "r1", StudentID: "s1", Type: models.RecordAssignment, Subject: "Maths", Term: models.TermFirst, Marks: 15, MaxMarks: 20, AssignmentNumber: 1})
	store.AddAcademicRecord(models.AcademicRecord{ID: "r2", StudentID: "s2", Type: models.RecordTermTest, Subject: "Maths", Term: models.TermFirst, Marks: 70, MaxMarks: 100})

	require.True(t, store.DeleteStudent("s1"))

	assert.Len(t, store.Students(), 1)
	day, ok := store.AttendanceDay("2025-09-01")
	require.True(t, ok)
	assert.NotContains(t, day.Students, "s1")
	assert.Contains(t, day.Students, "s2")

	records := store.AcademicRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "r2", records[0].ID)

	assert.False(t, store.DeleteStudent("missing"))
}

func TestStoreDaysHeldIgnoresEmptyDays(t *testing.T) {
	store := newTestStore(t, newMemoryBlobStore())

	store.SetAttendanceStatus("2025-09-01", "s1", models.AttendancePresent)
	store.SetAttendanceStatus("2025-09-02", "s1", models.AttendanceAbsent)
	assert.Equal(t, 2, store.DaysHeld())

	// Clearing the only mark leaves the day open but not held.
	store.ClearAttendanceStatus("2025-09-02", "s1")
	assert.Equal(t, 1, store.DaysHeld())
}

func TestStoreFindAcademicRecordMatchesAssignmentSlot(t *testing.T) {
	store := newTestStore(t, newMemoryBlobStore())

	store.AddAcademicRecord(models.AcademicRecord{ID: "r1", StudentID: "s1", Type: models.RecordAssignment, Subject: "Science", Term: models.TermFirst, AssignmentNumber: 1, Marks: 12, MaxMarks: 20})
	store.AddAcademicRecord(models.AcademicRecord{ID: "r2", StudentID: "s1", Type: models.RecordAssignment, Subject: "Science", Term: models.TermFirst, AssignmentNumber: 2, Marks: 18, MaxMarks: 20})

	rec, ok := store.FindAcademicRecord("s1", models.RecordAssignment, "Science", models.TermFirst, 2)
	require.True(t, ok)
	assert.Equal(t, "r2", rec.ID)

	_, ok = store.FindAcademicRecord("s1", models.RecordAssignment, "Science", models.TermSecond, 1)
	assert.False(t, ok)
}

func TestStoreLedgerSnapshotIsIsolated(t *testing.T) {
	store := newTestStore(t, newMemoryBlobStore())

	store.AddLedgerRow(models.LedgerRow{ID: "row1", StudentName: "Kasun Perera", Class: "10-A", Assignments: map[int]int{1: 15}, TermTests: map[int]int{}})

	rows := store.LedgerRows()
	require.Len(t, rows, 1)
	rows[0].Assignments[1] = 3

	fresh, ok := store.GetLedgerRow("row1")
	require.True(t, ok)
	assert.Equal(t, 15, fresh.Assignments[1])
}

func TestStoreInsertLedgerRowAfter(t *testing.T) {
	store := newTestStore(t, newMemoryBlobStore())

	store.AddLedgerRow(models.LedgerRow{ID: "row1", StudentName: "A", Assignments: map[int]int{}, TermTests: map[int]int{}})
	store.AddLedgerRow(models.LedgerRow{ID: "row3", StudentName: "C", Assignments: map[int]int{}, TermTests: map[int]int{}})
	store.InsertLedgerRowAfter("row1", models.LedgerRow{ID: "row2", StudentName: "B", Assignments: map[int]int{}, TermTests: map[int]int{}})

	rows := store.LedgerRows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"row1", "row2", "row3"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestStoreFlushRoundTrip(t *testing.T) {
	blob := newMemoryBlobStore()
	store := newTestStore(t, blob)

	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	store.SetAttendanceStatus("2025-09-01", "s1", models.AttendancePresent)
	store.SetTotalSchoolDays(190)
	require.NoError(t, store.Flush(context.Background()))

	reloaded := NewStore(blob, 200, "2025-08-28", nil)
	require.NoError(t, reloaded.Load(context.Background()))

	assert.Len(t, reloaded.Students(), 1)
	assert.Equal(t, 190, reloaded.TotalSchoolDays())
	day, ok := reloaded.AttendanceDay("2025-09-01")
	require.True(t, ok)
	assert.Equal(t, models.AttendancePresent, day.Students["s1"])
}
