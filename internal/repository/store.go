package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nipuna-lk/edutrack-api/internal/models"
)

// Store owns the in-memory working state and mediates every read and
// mutation behind one lock. Collections are loaded from the blob store at
// startup and written back key by key; only keys touched since the last
// flush are rewritten.
type Store struct {
	blob BlobStore
	log  *zap.Logger

	defaultTotalDays int
	defaultStartDate string

	mu              sync.RWMutex
	students        []models.Student
	attendance      map[string]*models.AttendanceDay
	legacyGrades    []models.LegacyGrade
	records         []models.AcademicRecord
	teachers        []models.TeacherAccount
	ledger          []models.LedgerRow
	totalSchoolDays int
	startDate       string

	dirty     map[string]struct{}
	lastSaved time.Time
}

// NewStore constructs a Store over the given blob backend. The defaults are
// used when the corresponding settings keys are absent.
func NewStore(blob BlobStore, defaultTotalDays int, defaultStartDate string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		blob:             blob,
		log:              log,
		defaultTotalDays: defaultTotalDays,
		defaultStartDate: defaultStartDate,
		attendance:       map[string]*models.AttendanceDay{},
		dirty:            map[string]struct{}{},
	}
}

// Load hydrates every collection from the blob store. Absent keys fall back
// to empty collections or configured defaults.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadJSON(ctx, KeyStudents, &s.students); err != nil {
		return err
	}
	if err := s.loadJSON(ctx, KeyAttendance, &s.attendance); err != nil {
		return err
	}
	if s.attendance == nil {
		s.attendance = map[string]*models.AttendanceDay{}
	}
	if err := s.loadJSON(ctx, KeyLegacyGrades, &s.legacyGrades); err != nil {
		return err
	}
	if err := s.loadJSON(ctx, KeyAcademicRecords, &s.records); err != nil {
		return err
	}
	if err := s.loadJSON(ctx, KeyTeachers, &s.teachers); err != nil {
		return err
	}
	if err := s.loadJSON(ctx, KeyEditableLedger, &s.ledger); err != nil {
		return err
	}

	s.totalSchoolDays = s.defaultTotalDays
	if err := s.loadJSON(ctx, KeyTotalSchoolDays, &s.totalSchoolDays); err != nil {
		return err
	}
	s.startDate = s.defaultStartDate
	if err := s.loadJSON(ctx, KeyStartDate, &s.startDate); err != nil {
		return err
	}

	s.dirty = map[string]struct{}{}
	s.log.Info("state loaded",
		zap.Int("students", len(s.students)),
		zap.Int("attendance_days", len(s.attendance)),
		zap.Int("academic_records", len(s.records)),
		zap.Int("ledger_rows", len(s.ledger)),
	)
	return nil
}

func (s *Store) loadJSON(ctx context.Context, key string, dst any) error {
	raw, err := s.blob.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Flush writes every dirty collection back to the blob store and clears the
// dirty set. It is a no-op when nothing changed since the last flush.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Store) flushLocked(ctx context.Context) error {
	if len(s.dirty) == 0 {
		return nil
	}
	for key := range s.dirty {
		var payload any
		switch key {
		case KeyStudents:
			payload = s.students
		case KeyAttendance:
			payload = s.attendance
		case KeyLegacyGrades:
			payload = s.legacyGrades
		case KeyAcademicRecords:
			payload = s.records
		case KeyTeachers:
			payload = s.teachers
		case KeyEditableLedger:
			payload = s.ledger
		case KeyTotalSchoolDays:
			payload = s.totalSchoolDays
		case KeyStartDate:
			payload = s.startDate
		default:
			continue
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := s.blob.Set(ctx, key, raw); err != nil {
			return fmt.Errorf("flush %s: %w", key, err)
		}
	}
	count := len(s.dirty)
	s.dirty = map[string]struct{}{}
	s.lastSaved = time.Now()
	s.log.Debug("state flushed", zap.Int("keys", count))
	return nil
}

// Dirty reports whether any collection changed since the last flush.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirty) > 0
}

// LastSaved returns the time of the last successful flush, zero before the
// first one.
func (s *Store) LastSaved() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSaved
}

func (s *Store) markDirty(keys ...string) {
	for _, key := range keys {
		s.dirty[key] = struct{}{}
	}
}

// --- students ---

// Students returns a snapshot of the roster.
func (s *Store) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Student, len(s.students))
	copy(out, s.students)
	return out
}

// GetStudent returns the roster entry with the given id.
func (s *Store) GetStudent(id string) (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.ID == id {
			return st, true
		}
	}
	return models.Student{}, false
}

// FindStudentByIndexNumber returns the roster entry with the given school
// index number.
func (s *Store) FindStudentByIndexNumber(index string) (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.IndexNumber == index {
			return st, true
		}
	}
	return models.Student{}, false
}

// FindStudentByName returns the first roster entry whose name matches,
// case-insensitively and ignoring surrounding whitespace.
func (s *Store) FindStudentByName(name string) (models.Student, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if strings.ToLower(strings.TrimSpace(st.Name)) == want {
			return st, true
		}
	}
	return models.Student{}, false
}

// AddStudent appends a roster entry.
func (s *Store) AddStudent(student models.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = append(s.students, student)
	s.markDirty(KeyStudents)
}

// UpdateStudent replaces the roster entry with the same id. It returns false
// when no entry matches.
func (s *Store) UpdateStudent(student models.Student) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID == student.ID {
			s.students[i] = student
			s.markDirty(KeyStudents)
			return true
		}
	}
	return false
}

// DeleteStudent removes a roster entry and cascades: the student's attendance
// marks, academic records and legacy grades are removed in the same
// operation. It returns false when no entry matches.
func (s *Store) DeleteStudent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.students {
		if s.students[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.students = append(s.students[:idx], s.students[idx+1:]...)
	s.markDirty(KeyStudents)

	for _, day := range s.attendance {
		if _, ok := day.Students[id]; ok {
			delete(day.Students, id)
			s.markDirty(KeyAttendance)
		}
	}

	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.StudentID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) != len(s.records) {
		s.records = kept
		s.markDirty(KeyAcademicRecords)
	}

	keptGrades := s.legacyGrades[:0]
	for _, g := range s.legacyGrades {
		if g.StudentID != id {
			keptGrades = append(keptGrades, g)
		}
	}
	if len(keptGrades) != len(s.legacyGrades) {
		s.legacyGrades = keptGrades
		s.markDirty(KeyLegacyGrades)
	}
	return true
}

// --- attendance ---

// AttendanceDays returns a snapshot of every recorded day keyed by date.
func (s *Store) AttendanceDays() map[string]models.AttendanceDay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.AttendanceDay, len(s.attendance))
	for date, day := range s.attendance {
		copied := models.AttendanceDay{Date: day.Date, Students: make(map[string]models.AttendanceStatus, len(day.Students))}
		for id, st := range day.Students {
			copied.Students[id] = st
		}
		out[date] = copied
	}
	return out
}

// AttendanceDay returns the statuses recorded for one date.
func (s *Store) AttendanceDay(date string) (models.AttendanceDay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day, ok := s.attendance[date]
	if !ok {
		return models.AttendanceDay{}, false
	}
	copied := models.AttendanceDay{Date: day.Date, Students: make(map[string]models.AttendanceStatus, len(day.Students))}
	for id, st := range day.Students {
		copied.Students[id] = st
	}
	return copied, true
}

// SetAttendanceStatus records one student's status for a date, creating the
// day on first write.
func (s *Store) SetAttendanceStatus(date, studentID string, status models.AttendanceStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.attendance[date]
	if !ok {
		day = &models.AttendanceDay{Date: date, Students: map[string]models.AttendanceStatus{}}
		s.attendance[date] = day
	}
	day.Students[studentID] = status
	s.markDirty(KeyAttendance)
}

// ClearAttendanceStatus removes one student's mark for a date. An empty day
// is kept; it simply no longer counts as held.
func (s *Store) ClearAttendanceStatus(date, studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.attendance[date]
	if !ok {
		return
	}
	if _, ok := day.Students[studentID]; ok {
		delete(day.Students, studentID)
		s.markDirty(KeyAttendance)
	}
}

// DaysHeld counts the dates that carry at least one recorded status. The
// figure is global, not per class.
func (s *Store) DaysHeld() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	held := 0
	for _, day := range s.attendance {
		if len(day.Students) > 0 {
			held++
		}
	}
	return held
}

// --- academic records ---

// AcademicRecords returns a snapshot of the record collection.
func (s *Store) AcademicRecords() []models.AcademicRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AcademicRecord, len(s.records))
	copy(out, s.records)
	return out
}

// GetAcademicRecord returns the record with the given id.
func (s *Store) GetAcademicRecord(id string) (models.AcademicRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return models.AcademicRecord{}, false
}

// FindAcademicRecord locates the record occupying one logical slot. The
// assignment ordinal only participates for assignment records.
func (s *Store) FindAcademicRecord(studentID string, typ models.RecordType, subject string, term models.Term, assignmentNumber int) (models.AcademicRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.StudentID != studentID || rec.Type != typ || rec.Subject != subject || rec.Term != term {
			continue
		}
		if typ == models.RecordAssignment && rec.AssignmentNumber != assignmentNumber {
			continue
		}
		return rec, true
	}
	return models.AcademicRecord{}, false
}

// AddAcademicRecord appends a record.
func (s *Store) AddAcademicRecord(rec models.AcademicRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.markDirty(KeyAcademicRecords)
}

// UpdateAcademicRecord replaces the record with the same id.
func (s *Store) UpdateAcademicRecord(rec models.AcademicRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == rec.ID {
			s.records[i] = rec
			s.markDirty(KeyAcademicRecords)
			return true
		}
	}
	return false
}

// DeleteAcademicRecord removes the record with the given id.
func (s *Store) DeleteAcademicRecord(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.markDirty(KeyAcademicRecords)
			return true
		}
	}
	return false
}

// LegacyGrades returns a snapshot of the superseded flat grade entries.
func (s *Store) LegacyGrades() []models.LegacyGrade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LegacyGrade, len(s.legacyGrades))
	copy(out, s.legacyGrades)
	return out
}

// --- teachers ---

// Teachers returns a snapshot of the registered accounts.
func (s *Store) Teachers() []models.TeacherAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TeacherAccount, len(s.teachers))
	copy(out, s.teachers)
	return out
}

// FindTeacherByUsername returns the account with the given username.
func (s *Store) FindTeacherByUsername(username string) (models.TeacherAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.teachers {
		if acc.Username == username {
			return acc, true
		}
	}
	return models.TeacherAccount{}, false
}

// AddTeacher appends an account.
func (s *Store) AddTeacher(acc models.TeacherAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teachers = append(s.teachers, acc)
	s.markDirty(KeyTeachers)
}

// --- editable ledger ---

// LedgerRows returns a deep snapshot of the editable ledger, ordered as
// stored.
func (s *Store) LedgerRows() []models.LedgerRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LedgerRow, len(s.ledger))
	for i, row := range s.ledger {
		out[i] = row.Clone()
	}
	return out
}

// GetLedgerRow returns the row with the given id.
func (s *Store) GetLedgerRow(id string) (models.LedgerRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.ledger {
		if row.ID == id {
			return row.Clone(), true
		}
	}
	return models.LedgerRow{}, false
}

// ReplaceLedger swaps the whole ledger, used after a rebuild from records.
func (s *Store) ReplaceLedger(rows []models.LedgerRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = make([]models.LedgerRow, len(rows))
	for i, row := range rows {
		s.ledger[i] = row.Clone()
	}
	s.markDirty(KeyEditableLedger)
}

// AddLedgerRow appends a row.
func (s *Store) AddLedgerRow(row models.LedgerRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = append(s.ledger, row.Clone())
	s.markDirty(KeyEditableLedger)
}

// InsertLedgerRowAfter inserts a row immediately after the row with the
// given id, or appends when the anchor is absent.
func (s *Store) InsertLedgerRowAfter(afterID string, row models.LedgerRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ledger {
		if s.ledger[i].ID == afterID {
			s.ledger = append(s.ledger[:i+1], append([]models.LedgerRow{row.Clone()}, s.ledger[i+1:]...)...)
			s.markDirty(KeyEditableLedger)
			return
		}
	}
	s.ledger = append(s.ledger, row.Clone())
	s.markDirty(KeyEditableLedger)
}

// UpdateLedgerRow replaces the row with the same id.
func (s *Store) UpdateLedgerRow(row models.LedgerRow) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ledger {
		if s.ledger[i].ID == row.ID {
			s.ledger[i] = row.Clone()
			s.markDirty(KeyEditableLedger)
			return true
		}
	}
	return false
}

// DeleteLedgerRow removes the row with the given id.
func (s *Store) DeleteLedgerRow(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ledger {
		if s.ledger[i].ID == id {
			s.ledger = append(s.ledger[:i], s.ledger[i+1:]...)
			s.markDirty(KeyEditableLedger)
			return true
		}
	}
	return false
}

// --- settings ---

// TotalSchoolDays returns the configured total for the academic year.
func (s *Store) TotalSchoolDays() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalSchoolDays
}

// SetTotalSchoolDays updates the academic year total.
func (s *Store) SetTotalSchoolDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalSchoolDays = days
	s.markDirty(KeyTotalSchoolDays)
}

// StartDate returns the academic year start date in YYYY-MM-DD form.
func (s *Store) StartDate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startDate
}

// SetStartDate updates the academic year start date.
func (s *Store) SetStartDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startDate = date
	s.markDirty(KeyStartDate)
}

// Classes returns the distinct class labels on the roster, sorted.
func (s *Store) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, st := range s.students {
		if st.Class != "" {
			seen[st.Class] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for class := range seen {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}
