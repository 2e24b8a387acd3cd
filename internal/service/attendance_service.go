package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type attendanceStore interface {
	GetStudent(id string) (models.Student, bool)
	AttendanceDays() map[string]models.AttendanceDay
	AttendanceDay(date string) (models.AttendanceDay, bool)
	SetAttendanceStatus(date, studentID string, status models.AttendanceStatus)
	ClearAttendanceStatus(date, studentID string)
	DaysHeld() int
	TotalSchoolDays() int
	SetTotalSchoolDays(days int)
	StartDate() string
	SetStartDate(date string)
}

// AttendanceService records daily marks and derives per-student statistics.
type AttendanceService struct {
	store     attendanceStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(store attendanceStore, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{store: store, validator: validate, logger: logger}
}

// MarkAttendanceRequest records or clears one student's mark for a date. An
// empty status clears any existing mark.
type MarkAttendanceRequest struct {
	Date      string `json:"date" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status"`
}

// Mark records or clears the mark described by the request.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) error {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must be in YYYY-MM-DD format")
	}
	if _, ok := s.store.GetStudent(req.StudentID); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if req.Status == "" {
		s.store.ClearAttendanceStatus(req.Date, req.StudentID)
		return nil
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "status must be present or absent")
	}
	s.store.SetAttendanceStatus(req.Date, req.StudentID, status)
	s.logger.Debug("attendance marked",
		zap.String("date", req.Date),
		zap.String("student_id", req.StudentID),
		zap.String("status", req.Status),
	)
	return nil
}

// Day returns the statuses recorded for one date. A date that was never
// touched comes back as an empty day rather than an error.
func (s *AttendanceService) Day(ctx context.Context, date string) (models.AttendanceDay, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return models.AttendanceDay{}, appErrors.Clone(appErrors.ErrValidation, "date must be in YYYY-MM-DD format")
	}
	day, ok := s.store.AttendanceDay(date)
	if !ok {
		return models.AttendanceDay{Date: date, Students: map[string]models.AttendanceStatus{}}, nil
	}
	return day, nil
}

// StatsFor summarises one student's attendance. The percentage is computed
// against the global days-held count, not the days that mention the student,
// and is zero when no day has been held yet.
func (s *AttendanceService) StatsFor(ctx context.Context, studentID string) (models.AttendanceStats, error) {
	if _, ok := s.store.GetStudent(studentID); !ok {
		return models.AttendanceStats{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return s.statsFor(studentID), nil
}

func (s *AttendanceService) statsFor(studentID string) models.AttendanceStats {
	stats := models.AttendanceStats{}
	for _, day := range s.store.AttendanceDays() {
		status, ok := day.Students[studentID]
		if !ok {
			continue
		}
		stats.Total++
		if status == models.AttendancePresent {
			stats.Present++
		} else {
			stats.Absent++
		}
	}
	if held := s.store.DaysHeld(); held > 0 {
		stats.Percentage = roundHalf(float64(stats.Present) / float64(held) * 100)
	}
	return stats
}

// Overview reports the process-wide calendar figures.
func (s *AttendanceService) Overview(ctx context.Context) models.AttendanceOverview {
	held := s.store.DaysHeld()
	total := s.store.TotalSchoolDays()
	available := total - held
	if available < 0 {
		available = 0
	}
	return models.AttendanceOverview{
		DaysHeld:        held,
		AvailableDays:   available,
		TotalSchoolDays: total,
		StartDate:       s.store.StartDate(),
	}
}

// UpdateSettingsRequest adjusts the academic year calendar settings. Zero
// values leave the corresponding setting untouched.
type UpdateSettingsRequest struct {
	TotalSchoolDays int    `json:"totalSchoolDays" validate:"omitempty,min=1,max=366"`
	StartDate       string `json:"startDate"`
}

// UpdateSettings applies calendar setting changes.
func (s *AttendanceService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) error {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	if req.StartDate != "" {
		if _, err := time.Parse(dateLayout, req.StartDate); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "startDate must be in YYYY-MM-DD format")
		}
		s.store.SetStartDate(req.StartDate)
	}
	if req.TotalSchoolDays > 0 {
		s.store.SetTotalSchoolDays(req.TotalSchoolDays)
	}
	return nil
}
