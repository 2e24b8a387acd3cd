package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

type studentStore interface {
	Students() []models.Student
	GetStudent(id string) (models.Student, bool)
	FindStudentByIndexNumber(index string) (models.Student, bool)
	AddStudent(student models.Student)
	UpdateStudent(student models.Student) bool
	DeleteStudent(id string) bool
	Classes() []string
}

// StudentService manages the roster.
type StudentService struct {
	store     studentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(store studentStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, validator: validate, logger: logger}
}

// CreateStudentRequest registers a roster entry.
type CreateStudentRequest struct {
	Name        string `json:"name" validate:"required"`
	IndexNumber string `json:"studentId" validate:"required"`
	Class       string `json:"class" validate:"required"`
	Contact     string `json:"contact"`
}

// Create validates and appends a roster entry. The index number must be
// unique across the roster.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (models.Student, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return models.Student{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if _, exists := s.store.FindStudentByIndexNumber(req.IndexNumber); exists {
		return models.Student{}, appErrors.Clone(appErrors.ErrConflict, "a student with this index number already exists")
	}
	now := time.Now().UTC()
	student := models.Student{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		IndexNumber: req.IndexNumber,
		Class:       req.Class,
		Contact:     req.Contact,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.store.AddStudent(student)
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("class", student.Class))
	return student, nil
}

// UpdateStudentRequest edits a roster entry. Empty fields keep their
// current value.
type UpdateStudentRequest struct {
	Name    string `json:"name"`
	Class   string `json:"class"`
	Contact string `json:"contact"`
}

// Update applies non-empty fields to the roster entry.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (models.Student, error) {
	student, ok := s.store.GetStudent(id)
	if !ok {
		return models.Student{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if req.Name != "" {
		student.Name = strings.TrimSpace(req.Name)
	}
	if req.Class != "" {
		student.Class = req.Class
	}
	if req.Contact != "" {
		student.Contact = req.Contact
	}
	student.UpdatedAt = time.Now().UTC()
	s.store.UpdateStudent(student)
	return student, nil
}

// Get returns one roster entry.
func (s *StudentService) Get(ctx context.Context, id string) (models.Student, error) {
	student, ok := s.store.GetStudent(id)
	if !ok {
		return models.Student{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

// Delete removes a roster entry. The student's attendance marks and academic
// records go with it.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if !s.store.DeleteStudent(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

// List returns the filtered, paginated roster. Page defaults to 1 and
// PageSize to 20; search matches name and index number case-insensitively.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, models.Pagination) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	matched := make([]models.Student, 0)
	for _, student := range s.store.Students() {
		if filter.Class != "" && student.Class != filter.Class {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(student.Name), search) &&
			!strings.Contains(strings.ToLower(student.IndexNumber), search) {
			continue
		}
		matched = append(matched, student)
	}

	pagination := models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(matched)}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return []models.Student{}, pagination
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], pagination
}

// Classes returns the distinct class labels on the roster.
func (s *StudentService) Classes(ctx context.Context) []string {
	return s.store.Classes()
}
