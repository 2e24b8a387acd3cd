package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

type academicStore interface {
	GetStudent(id string) (models.Student, bool)
	Students() []models.Student
	AcademicRecords() []models.AcademicRecord
	GetAcademicRecord(id string) (models.AcademicRecord, bool)
	FindAcademicRecord(studentID string, typ models.RecordType, subject string, term models.Term, assignmentNumber int) (models.AcademicRecord, bool)
	AddAcademicRecord(rec models.AcademicRecord)
	UpdateAcademicRecord(rec models.AcademicRecord) bool
	DeleteAcademicRecord(id string) bool
	LegacyGrades() []models.LegacyGrade
}

// AcademicService manages discrete mark records and the tabular views
// derived from them.
type AcademicService struct {
	store          academicStore
	defaultSubject string
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewAcademicService constructs the academic records service. defaultSubject
// fills records created without an explicit subject.
func NewAcademicService(store academicStore, defaultSubject string, validate *validator.Validate, logger *zap.Logger) *AcademicService {
	if defaultSubject == "" {
		defaultSubject = "General"
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicService{store: store, defaultSubject: defaultSubject, validator: validate, logger: logger}
}

// CreateAcademicRecordRequest adds one mark record. Marks is a pointer so a
// zero mark survives the required check.
type CreateAcademicRecordRequest struct {
	StudentID        string `json:"studentId" validate:"required"`
	Type             string `json:"type" validate:"required"`
	Subject          string `json:"subject"`
	Term             string `json:"term" validate:"required"`
	Marks            *int   `json:"marks" validate:"required"`
	AssignmentNumber int    `json:"assignmentNumber"`
}

// Create validates and appends a record. Marks outside the type's range are
// rejected, never clamped, and a record already occupying the same logical
// slot is a conflict.
func (s *AcademicService) Create(ctx context.Context, req CreateAcademicRecordRequest) (models.AcademicRecord, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return models.AcademicRecord{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic record payload")
	}

	typ := models.RecordType(req.Type)
	if !typ.Valid() {
		return models.AcademicRecord{}, appErrors.Clone(appErrors.ErrValidation, "type must be assignment or termtest")
	}
	term := models.Term(req.Term)
	if !term.Valid() {
		return models.AcademicRecord{}, appErrors.Clone(appErrors.ErrValidation, "term must be first, second or third")
	}

	student, ok := s.store.GetStudent(req.StudentID)
	if !ok {
		return models.AcademicRecord{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	maxMarks := typ.MaxMarks()
	marks := *req.Marks
	if marks < 0 || marks > maxMarks {
		return models.AcademicRecord{}, appErrors.Clone(appErrors.ErrValidation, "marks out of range for record type")
	}

	assignmentNumber := 0
	if typ == models.RecordAssignment {
		assignmentNumber = req.AssignmentNumber
		if assignmentNumber < 1 || assignmentNumber > models.AssignmentSlots {
			return models.AcademicRecord{}, appErrors.Clone(appErrors.ErrValidation, "assignmentNumber must be between 1 and 5")
		}
	}

	subject := req.Subject
	if subject == "" {
		subject = s.defaultSubject
	}

	if _, exists := s.store.FindAcademicRecord(req.StudentID, typ, subject, term, assignmentNumber); exists {
		return models.AcademicRecord{}, appErrors.Clone(appErrors.ErrConflict, "a record already exists for this slot")
	}

	rec := models.AcademicRecord{
		ID:               uuid.NewString(),
		StudentID:        student.ID,
		StudentName:      student.Name,
		Class:            student.Class,
		Type:             typ,
		Subject:          subject,
		Term:             term,
		Marks:            marks,
		MaxMarks:         maxMarks,
		AssignmentNumber: assignmentNumber,
		Grade:            Classify(float64(marks) / float64(maxMarks) * 100),
		CreatedAt:        time.Now().UTC(),
	}
	s.store.AddAcademicRecord(rec)
	s.logger.Debug("academic record created",
		zap.String("record_id", rec.ID),
		zap.String("student_id", rec.StudentID),
		zap.String("type", string(rec.Type)),
	)
	return rec, nil
}

// UpdateAcademicRecordRequest changes the marks of an existing record.
type UpdateAcademicRecordRequest struct {
	Marks *int `json:"marks" validate:"required"`
}

// Update replaces a record's marks and recomputes its grade.
func (s *AcademicService) Update(ctx context.Context, id string, req UpdateAcademicRecordRequest) (models.AcademicRecord, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return models.AcademicRecord{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic record payload")
	}
	rec, ok := s.store.GetAcademicRecord(id)
	if !ok {
		return models.AcademicRecord{}, appErrors.Clone(appErrors.ErrNotFound, "academic record not found")
	}
	marks := *req.Marks
	if marks < 0 || marks > rec.MaxMarks {
		return models.AcademicRecord{}, appErrors.Clone(appErrors.ErrValidation, "marks out of range for record type")
	}
	rec.Marks = marks
	rec.Grade = Classify(float64(marks) / float64(rec.MaxMarks) * 100)
	s.store.UpdateAcademicRecord(rec)
	return rec, nil
}

// Delete removes a record.
func (s *AcademicService) Delete(ctx context.Context, id string) error {
	if !s.store.DeleteAcademicRecord(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "academic record not found")
	}
	return nil
}

// List returns records matching the filter in insertion order.
func (s *AcademicService) List(ctx context.Context, filter models.AcademicFilter) []models.AcademicRecord {
	out := make([]models.AcademicRecord, 0)
	for _, rec := range s.store.AcademicRecords() {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.Type != "" && rec.Type != filter.Type {
			continue
		}
		if filter.Subject != "" && rec.Subject != filter.Subject {
			continue
		}
		if filter.Term != "" && rec.Term != filter.Term {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// StatsFor summarises one student's marks. The assignment average stays on
// the raw 0-20 scale; callers wanting the percentage view use the table
// builders.
func (s *AcademicService) StatsFor(ctx context.Context, studentID string) (models.AcademicStats, error) {
	if _, ok := s.store.GetStudent(studentID); !ok {
		return models.AcademicStats{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return s.statsFor(studentID), nil
}

func (s *AcademicService) statsFor(studentID string) models.AcademicStats {
	stats := models.AcademicStats{}
	assignmentSum, assignmentCount := 0, 0
	termSum, termCount := 0, 0
	for _, rec := range s.store.AcademicRecords() {
		if rec.StudentID != studentID {
			continue
		}
		stats.Total++
		switch rec.Type {
		case models.RecordAssignment:
			assignmentSum += rec.Marks
			assignmentCount++
		case models.RecordTermTest:
			termSum += rec.Marks
			termCount++
		}
	}
	if assignmentCount > 0 {
		stats.AssignmentAvg = roundHalf(float64(assignmentSum) / float64(assignmentCount))
	}
	if termCount > 0 {
		stats.TermTestAvg = roundHalf(float64(termSum) / float64(termCount))
	}
	return stats
}

// AssignmentTable builds the per-student assignment slots view for a class,
// subject and term. The row average is the mean of the raw 0-20 marks
// rescaled to 0-100 by multiplying by five, then rounded.
func (s *AcademicService) AssignmentTable(ctx context.Context, class, subject string, term models.Term) ([]models.AssignmentTableRow, error) {
	if !term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term must be first, second or third")
	}
	if subject == "" {
		subject = s.defaultSubject
	}
	records := s.store.AcademicRecords()
	rows := make([]models.AssignmentTableRow, 0)
	for _, student := range s.store.Students() {
		if class != "" && student.Class != class {
			continue
		}
		row := models.AssignmentTableRow{
			StudentID:   student.ID,
			IndexNumber: student.IndexNumber,
			StudentName: student.Name,
		}
		sum, count := 0, 0
		for _, rec := range records {
			if rec.StudentID != student.ID || rec.Type != models.RecordAssignment || rec.Subject != subject || rec.Term != term {
				continue
			}
			slot := rec.AssignmentNumber
			if slot < 1 || slot > models.AssignmentSlots {
				continue
			}
			marks := rec.Marks
			row.Marks[slot-1] = &marks
			sum += marks
			count++
		}
		row.Total = sum
		if count > 0 {
			avg := roundHalf(float64(sum) / float64(count) * 5)
			row.Average = &avg
			row.Grade = Classify(float64(avg))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TermTestTable builds the per-student term test slots view for a class and
// subject, one column per term.
func (s *AcademicService) TermTestTable(ctx context.Context, class, subject string) ([]models.TermTestTableRow, error) {
	if subject == "" {
		subject = s.defaultSubject
	}
	records := s.store.AcademicRecords()
	rows := make([]models.TermTestTableRow, 0)
	for _, student := range s.store.Students() {
		if class != "" && student.Class != class {
			continue
		}
		row := models.TermTestTableRow{
			StudentID:   student.ID,
			IndexNumber: student.IndexNumber,
			StudentName: student.Name,
		}
		sum, count := 0, 0
		for _, rec := range records {
			if rec.StudentID != student.ID || rec.Type != models.RecordTermTest || rec.Subject != subject {
				continue
			}
			slot := rec.Term.Ordinal()
			if slot < 1 || slot > models.TermTestSlots {
				continue
			}
			marks := rec.Marks
			row.Marks[slot-1] = &marks
			sum += marks
			count++
		}
		if count > 0 {
			avg := roundHalf(float64(sum) / float64(count))
			row.Average = &avg
			row.Grade = Classify(float64(avg))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LegacyGrades exposes the superseded flat grade entries read-only.
func (s *AcademicService) LegacyGrades(ctx context.Context) []models.LegacyGrade {
	return s.store.LegacyGrades()
}
