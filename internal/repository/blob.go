package repository

import (
	"context"
	"errors"
)

// Persisted state keys. The layout matches the legacy client: each key
// holds one JSON-encoded collection or scalar.
const (
	KeyStudents        = "students"
	KeyAttendance      = "attendance"
	KeyLegacyGrades    = "grades"
	KeyAcademicRecords = "academicRecords"
	KeyTeachers        = "teachers"
	KeyTotalSchoolDays = "totalSchoolDays"
	KeyStartDate       = "startDate"
	KeyEditableLedger  = "editableAcademicData"
)

// ErrKeyNotFound is returned by BlobStore implementations for absent keys.
var ErrKeyNotFound = errors.New("blob: key not found")

// BlobStore persists opaque JSON values under string keys. Writes are
// last-write-wins; there is no conflict detection.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
