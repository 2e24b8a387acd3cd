package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

// Overall score weights.
const (
	attendanceWeight = 0.3
	assignmentWeight = 0.35
	termTestWeight   = 0.35
)

type performanceStore interface {
	GetStudent(id string) (models.Student, bool)
	Students() []models.Student
}

// PerformanceService combines attendance and academic figures into the
// overall score and assembles student summaries.
type PerformanceService struct {
	store      performanceStore
	attendance *AttendanceService
	academics  *AcademicService
	logger     *zap.Logger
}

// NewPerformanceService constructs the performance service.
func NewPerformanceService(store performanceStore, attendance *AttendanceService, academics *AcademicService, logger *zap.Logger) *PerformanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{store: store, attendance: attendance, academics: academics, logger: logger}
}

// Overall computes the weighted performance score for one student. The
// assignment average enters on its raw 0-20 scale, matching the legacy
// client's arithmetic, so assignments contribute at most 7 points.
func (s *PerformanceService) Overall(ctx context.Context, studentID string) (models.OverallPerformance, error) {
	if _, ok := s.store.GetStudent(studentID); !ok {
		return models.OverallPerformance{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	attendance := s.attendance.statsFor(studentID)
	academics := s.academics.statsFor(studentID)
	return overallFrom(attendance, academics), nil
}

func overallFrom(attendance models.AttendanceStats, academics models.AcademicStats) models.OverallPerformance {
	score := roundHalf(
		attendanceWeight*float64(attendance.Percentage) +
			assignmentWeight*float64(academics.AssignmentAvg) +
			termTestWeight*float64(academics.TermTestAvg),
	)
	return models.OverallPerformance{Score: score, Level: PerformanceLevelFor(score)}
}

// Summary assembles the full per-student card: roster entry, attendance,
// academics and overall performance.
func (s *PerformanceService) Summary(ctx context.Context, studentID string) (models.StudentSummary, error) {
	student, ok := s.store.GetStudent(studentID)
	if !ok {
		return models.StudentSummary{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	attendance := s.attendance.statsFor(studentID)
	academics := s.academics.statsFor(studentID)
	return models.StudentSummary{
		Student:     student,
		Attendance:  attendance,
		Academics:   academics,
		Performance: overallFrom(attendance, academics),
	}, nil
}

// Summaries assembles the card for every student in the optional class.
func (s *PerformanceService) Summaries(ctx context.Context, class string) []models.StudentSummary {
	out := make([]models.StudentSummary, 0)
	for _, student := range s.store.Students() {
		if class != "" && student.Class != class {
			continue
		}
		attendance := s.attendance.statsFor(student.ID)
		academics := s.academics.statsFor(student.ID)
		out = append(out, models.StudentSummary{
			Student:     student,
			Attendance:  attendance,
			Academics:   academics,
			Performance: overallFrom(attendance, academics),
		})
	}
	return out
}
