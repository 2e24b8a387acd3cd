package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	"github.com/nipuna-lk/edutrack-api/internal/repository"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
	"github.com/nipuna-lk/edutrack-api/pkg/jobs"
)

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// CreateReportRequest describes a report generation request.
type CreateReportRequest struct {
	Type    string `json:"type" validate:"required"`
	Class   string `json:"class"`
	Subject string `json:"subject"`
	Term    string `json:"term"`
	Format  string `json:"format" validate:"required"`
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ReportService orchestrates report job lifecycle management.
type ReportService struct {
	registry *repository.ReportJobRegistry
	queue    jobDispatcher
	exporter *ExportService
	logger   *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(registry *repository.ReportJobRegistry, queue jobDispatcher, exporter *ExportService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{registry: registry, queue: queue, exporter: exporter, logger: logger}
}

// CreateJob validates the request, registers the job, and enqueues it.
func (s *ReportService) CreateJob(ctx context.Context, req CreateReportRequest, createdBy string) (models.ReportJob, error) {
	reportType := models.ReportType(req.Type)
	switch reportType {
	case models.ReportTypeAttendance, models.ReportTypeAssignment, models.ReportTypeTermTest, models.ReportTypeOverall:
	default:
		return models.ReportJob{}, appErrors.Clone(appErrors.ErrValidation, "unsupported report type")
	}
	format := models.ReportFormat(req.Format)
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return models.ReportJob{}, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	term := models.Term(req.Term)
	if req.Term != "" && !term.Valid() {
		return models.ReportJob{}, appErrors.Clone(appErrors.ErrValidation, "term must be first, second or third")
	}

	job := models.ReportJob{
		ID:   uuid.NewString(),
		Type: reportType,
		Params: models.ReportJobParams{
			Class:   req.Class,
			Subject: req.Subject,
			Term:    term,
			Format:  format,
		},
		Status:    models.ReportStatusQueued,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	s.registry.Put(job)

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		now := time.Now().UTC()
		msg := "failed to enqueue job"
		s.registry.Update(job.ID, func(j *models.ReportJob) {
			j.Status = models.ReportStatusFailed
			j.Progress = 100
			j.ErrorMessage = &msg
			j.FinishedAt = &now
		})
		return models.ReportJob{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	s.logger.Info("report job queued", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return job, nil
}

// GetJob exposes job metadata to clients.
func (s *ReportService) GetJob(ctx context.Context, id string) (models.ReportJob, error) {
	job, ok := s.registry.Get(id)
	if !ok {
		return models.ReportJob{}, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	return job, nil
}

// ListJobs returns every tracked job, newest first.
func (s *ReportService) ListJobs(ctx context.Context) []models.ReportJob {
	return s.registry.List()
}

// Process is the queue handler: it renders the report and records the
// outcome on the job.
func (s *ReportService) Process(ctx context.Context, queued jobs.Job) error {
	job, ok := s.registry.Get(queued.ID)
	if !ok {
		s.logger.Warn("queued report job unknown", zap.String("job_id", queued.ID))
		return nil
	}
	s.registry.Update(job.ID, func(j *models.ReportJob) {
		j.Status = models.ReportStatusProcessing
		j.Progress = 10
	})

	result, err := s.exporter.Generate(ctx, &job)
	now := time.Now().UTC()
	if err != nil {
		msg := err.Error()
		s.registry.Update(job.ID, func(j *models.ReportJob) {
			j.Status = models.ReportStatusFailed
			j.Progress = 100
			j.ErrorMessage = &msg
			j.FinishedAt = &now
		})
		s.logger.Error("report generation failed", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}

	s.registry.Update(job.ID, func(j *models.ReportJob) {
		j.Status = models.ReportStatusFinished
		j.Progress = 100
		j.ResultURL = &result.URL
		j.FinishedAt = &now
	})
	s.logger.Info("report generated", zap.String("job_id", job.ID), zap.String("path", result.RelativePath))
	return nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, ok := s.registry.Get(jobID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// CleanupExpired removes export files older than the exporter's TTL.
func (s *ReportService) CleanupExpired() {
	deleted, err := s.exporter.Cleanup(0)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
}
