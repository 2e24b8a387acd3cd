package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

// ledgerWriteBackTerm is the term assignment marks entered through the
// ledger are recorded under; the grid has no term axis for assignments.
const ledgerWriteBackTerm = models.TermFirst

type ledgerStore interface {
	GetStudent(id string) (models.Student, bool)
	FindStudentByName(name string) (models.Student, bool)
	AcademicRecords() []models.AcademicRecord
	FindAcademicRecord(studentID string, typ models.RecordType, subject string, term models.Term, assignmentNumber int) (models.AcademicRecord, bool)
	AddAcademicRecord(rec models.AcademicRecord)
	UpdateAcademicRecord(rec models.AcademicRecord) bool
	DeleteAcademicRecord(id string) bool
	LedgerRows() []models.LedgerRow
	GetLedgerRow(id string) (models.LedgerRow, bool)
	ReplaceLedger(rows []models.LedgerRow)
	AddLedgerRow(row models.LedgerRow)
	InsertLedgerRowAfter(afterID string, row models.LedgerRow)
	UpdateLedgerRow(row models.LedgerRow) bool
	DeleteLedgerRow(id string) bool
}

// EditState describes the single cell currently open for editing.
type EditState struct {
	RowID  string             `json:"rowId"`
	Field  models.LedgerField `json:"field"`
	Staged string             `json:"staged"`
}

// LedgerService maintains the editable marks grid. At most one cell is open
// at a time; opening another cell implicitly commits the previous one, the
// same way the grid's inputs commit on blur.
type LedgerService struct {
	store          ledgerStore
	defaultSubject string
	logger         *zap.Logger

	mu      sync.Mutex
	editing *EditState
}

// NewLedgerService constructs the ledger service. defaultSubject scopes the
// records the grid reads and writes.
func NewLedgerService(store ledgerStore, defaultSubject string, logger *zap.Logger) *LedgerService {
	if defaultSubject == "" {
		defaultSubject = "General"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{store: store, defaultSubject: defaultSubject, logger: logger}
}

// Rows returns the current grid.
func (s *LedgerService) Rows(ctx context.Context) []models.LedgerRow {
	return s.store.LedgerRows()
}

// EditingState returns the open cell, or nil when the grid is idle.
func (s *LedgerService) EditingState() *EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return nil
	}
	copied := *s.editing
	return &copied
}

// Bootstrap picks the grid's initial contents after state load. Whenever any
// academic records exist the grid is rebuilt from them; the persisted snapshot
// only survives when there are no records to derive rows from.
func (s *LedgerService) Bootstrap(ctx context.Context) []models.LedgerRow {
	if len(s.store.AcademicRecords()) > 0 {
		return s.Rebuild(ctx)
	}
	return s.store.LedgerRows()
}

// Rebuild regenerates the grid from the academic records, grouping marks by
// (student name, class). Rows the records cannot explain are dropped; the
// record collection is the source of truth.
func (s *LedgerService) Rebuild(ctx context.Context) []models.LedgerRow {
	s.mu.Lock()
	s.editing = nil
	s.mu.Unlock()

	type groupKey struct {
		name  string
		class string
	}
	groups := map[groupKey]*models.LedgerRow{}
	order := []groupKey{}
	for _, rec := range s.store.AcademicRecords() {
		if rec.Subject != s.defaultSubject {
			continue
		}
		name := rec.StudentName
		class := rec.Class
		if student, ok := s.store.GetStudent(rec.StudentID); ok {
			name = student.Name
			class = student.Class
		}
		if name == "" {
			continue
		}
		key := groupKey{name: name, class: class}
		row, ok := groups[key]
		if !ok {
			row = &models.LedgerRow{
				ID:          uuid.NewString(),
				StudentName: name,
				Class:       class,
				Assignments: map[int]int{},
				TermTests:   map[int]int{},
			}
			groups[key] = row
			order = append(order, key)
		}
		switch rec.Type {
		case models.RecordAssignment:
			if rec.AssignmentNumber >= 1 && rec.AssignmentNumber <= models.AssignmentSlots {
				row.Assignments[rec.AssignmentNumber] = rec.Marks
			}
		case models.RecordTermTest:
			if slot := rec.Term.Ordinal(); slot >= 1 {
				row.TermTests[slot] = rec.Marks
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].class != order[j].class {
			return order[i].class < order[j].class
		}
		return order[i].name < order[j].name
	})
	rows := make([]models.LedgerRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *groups[key])
	}
	s.store.ReplaceLedger(rows)
	s.logger.Info("ledger rebuilt", zap.Int("rows", len(rows)))
	return s.store.LedgerRows()
}

// AddRow appends an empty row. The row stays marked new until its name is
// committed; until then no marks written into it reach the record
// collection. A rebuild drops rows no record explains, new ones included.
func (s *LedgerService) AddRow(ctx context.Context) models.LedgerRow {
	row := models.LedgerRow{
		ID:          uuid.NewString(),
		Assignments: map[int]int{},
		TermTests:   map[int]int{},
		IsNew:       true,
	}
	s.store.AddLedgerRow(row)
	return row
}

// DuplicateRow copies a row, suffixing the name, and inserts the copy right
// after the original. The copy's marks stay ledger-only until edited.
func (s *LedgerService) DuplicateRow(ctx context.Context, rowID string) (models.LedgerRow, error) {
	row, ok := s.store.GetLedgerRow(rowID)
	if !ok {
		return models.LedgerRow{}, appErrors.Clone(appErrors.ErrNotFound, "ledger row not found")
	}
	copied := row.Clone()
	copied.ID = uuid.NewString()
	copied.StudentName = row.StudentName + " (Copy)"
	copied.IsNew = true
	s.store.InsertLedgerRowAfter(rowID, copied)
	return copied, nil
}

// DeleteRow removes a row from the grid. Academic records are untouched; a
// rebuild restores any row that still has records behind it.
func (s *LedgerService) DeleteRow(ctx context.Context, rowID string) error {
	s.mu.Lock()
	if s.editing != nil && s.editing.RowID == rowID {
		s.editing = nil
	}
	s.mu.Unlock()
	if !s.store.DeleteLedgerRow(rowID) {
		return appErrors.Clone(appErrors.ErrNotFound, "ledger row not found")
	}
	return nil
}

// OpenCell starts editing a cell. If another cell is already open its staged
// value is committed first; a failing implicit commit discards that edit
// rather than blocking the new one.
func (s *LedgerService) OpenCell(ctx context.Context, rowID string, field models.LedgerField) (*EditState, error) {
	if !field.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown ledger field")
	}
	row, ok := s.store.GetLedgerRow(rowID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "ledger row not found")
	}

	s.mu.Lock()
	previous := s.editing
	s.mu.Unlock()
	if previous != nil && !(previous.RowID == rowID && previous.Field == field) {
		if err := s.commit(ctx, *previous); err != nil {
			s.logger.Warn("implicit ledger commit failed",
				zap.String("row_id", previous.RowID),
				zap.String("field", string(previous.Field.Kind)),
				zap.Error(err),
			)
		}
	}

	state := &EditState{RowID: rowID, Field: field, Staged: s.cellValue(row, field)}
	s.mu.Lock()
	s.editing = state
	s.mu.Unlock()
	copied := *state
	return &copied, nil
}

// StageValue replaces the staged value of the open cell.
func (s *LedgerService) StageValue(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return appErrors.Clone(appErrors.ErrValidation, "no cell is being edited")
	}
	s.editing.Staged = value
	return nil
}

// CommitCell commits the given value to the open cell and returns the grid
// to idle. On a rejected value the cell stays open and nothing mutates.
func (s *LedgerService) CommitCell(ctx context.Context, value string) error {
	s.mu.Lock()
	if s.editing == nil {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, "no cell is being edited")
	}
	state := *s.editing
	s.mu.Unlock()

	state.Staged = value
	if err := s.commit(ctx, state); err != nil {
		return err
	}
	s.mu.Lock()
	s.editing = nil
	s.mu.Unlock()
	return nil
}

// CancelEdit discards the open edit.
func (s *LedgerService) CancelEdit(ctx context.Context) {
	s.mu.Lock()
	s.editing = nil
	s.mu.Unlock()
}

// ForceCommit commits any open edit with its staged value. The autosave loop
// calls this before flushing so a cell left open does not lose its value.
func (s *LedgerService) ForceCommit(ctx context.Context) error {
	s.mu.Lock()
	if s.editing == nil {
		s.mu.Unlock()
		return nil
	}
	state := *s.editing
	s.editing = nil
	s.mu.Unlock()
	return s.commit(ctx, state)
}

func (s *LedgerService) cellValue(row models.LedgerRow, field models.LedgerField) string {
	switch field.Kind {
	case models.LedgerFieldName:
		return row.StudentName
	case models.LedgerFieldClass:
		return row.Class
	case models.LedgerFieldAssignment:
		if v, ok := row.Assignments[field.Slot]; ok {
			return strconv.Itoa(v)
		}
	case models.LedgerFieldTermTest:
		if v, ok := row.TermTests[field.Slot]; ok {
			return strconv.Itoa(v)
		}
	}
	return ""
}

func (s *LedgerService) commit(ctx context.Context, state EditState) error {
	row, ok := s.store.GetLedgerRow(state.RowID)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "ledger row not found")
	}

	switch state.Field.Kind {
	case models.LedgerFieldName:
		row.StudentName = strings.TrimSpace(state.Staged)
		if row.StudentName != "" {
			row.IsNew = false
		}
		s.store.UpdateLedgerRow(row)
		return nil
	case models.LedgerFieldClass:
		row.Class = strings.TrimSpace(state.Staged)
		s.store.UpdateLedgerRow(row)
		return nil
	}

	return s.commitMark(row, state.Field, state.Staged)
}

// commitMark applies a mark cell commit. An empty or zero value clears the
// cell and any backing record. Values out of range are rejected before any
// state changes.
func (s *LedgerService) commitMark(row models.LedgerRow, field models.LedgerField, staged string) error {
	staged = strings.TrimSpace(staged)
	marks := 0
	if staged != "" {
		parsed, err := strconv.Atoi(staged)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "marks must be a whole number")
		}
		marks = parsed
	}
	if marks < 0 || marks > field.MaxMarks() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("marks must be between 0 and %d", field.MaxMarks()))
	}

	if marks == 0 {
		delete(s.cells(&row, field.Kind), field.Slot)
	} else {
		s.cells(&row, field.Kind)[field.Slot] = marks
	}
	s.store.UpdateLedgerRow(row)

	// Write the mark back to the record collection only when the row's name
	// resolves to a roster entry. Unresolved rows live in the grid alone.
	student, ok := s.store.FindStudentByName(row.StudentName)
	if !ok {
		return nil
	}

	typ := models.RecordAssignment
	term := ledgerWriteBackTerm
	assignmentNumber := field.Slot
	if field.Kind == models.LedgerFieldTermTest {
		typ = models.RecordTermTest
		term = models.TermByOrdinal(field.Slot)
		assignmentNumber = 0
	}

	existing, found := s.store.FindAcademicRecord(student.ID, typ, s.defaultSubject, term, assignmentNumber)
	switch {
	case marks == 0:
		if found {
			s.store.DeleteAcademicRecord(existing.ID)
		}
	case found:
		existing.Marks = marks
		existing.Grade = Classify(float64(marks) / float64(existing.MaxMarks) * 100)
		s.store.UpdateAcademicRecord(existing)
	default:
		maxMarks := typ.MaxMarks()
		s.store.AddAcademicRecord(models.AcademicRecord{
			ID:               uuid.NewString(),
			StudentID:        student.ID,
			StudentName:      student.Name,
			Class:            student.Class,
			Type:             typ,
			Subject:          s.defaultSubject,
			Term:             term,
			Marks:            marks,
			MaxMarks:         maxMarks,
			AssignmentNumber: assignmentNumber,
			Grade:            Classify(float64(marks) / float64(maxMarks) * 100),
			CreatedAt:        time.Now().UTC(),
		})
	}
	return nil
}

func (s *LedgerService) cells(row *models.LedgerRow, kind models.LedgerFieldKind) map[int]int {
	if kind == models.LedgerFieldTermTest {
		if row.TermTests == nil {
			row.TermTests = map[int]int{}
		}
		return row.TermTests
	}
	if row.Assignments == nil {
		row.Assignments = map[int]int{}
	}
	return row.Assignments
}
