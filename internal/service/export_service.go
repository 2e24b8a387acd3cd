package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	"github.com/nipuna-lk/edutrack-api/pkg/export"
	"github.com/nipuna-lk/edutrack-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	attendance  *AttendanceService
	academics   *AcademicService
	performance *PerformanceService
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(attendance *AttendanceService, academics *AcademicService, performance *PerformanceService, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		attendance:  attendance,
		academics:   academics,
		performance: performance,
		storage:     files,
		csv:         csv,
		pdf:         pdf,
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/reports/download/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	classPart := sanitizeFilename(job.Params.Class)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), classPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeAttendance:
		return s.buildAttendanceDataset(ctx, job.Params)
	case models.ReportTypeAssignment:
		return s.buildAssignmentDataset(ctx, job.Params)
	case models.ReportTypeTermTest:
		return s.buildTermTestDataset(ctx, job.Params)
	case models.ReportTypeOverall:
		return s.buildOverallDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildAttendanceDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	summaries := s.performance.Summaries(ctx, params.Class)
	dataset := export.Dataset{
		Headers: []string{"Index No", "Student", "Class", "Present", "Absent", "Percentage"},
	}
	for _, summary := range summaries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Index No":   summary.Student.IndexNumber,
			"Student":    summary.Student.Name,
			"Class":      summary.Student.Class,
			"Present":    strconv.Itoa(summary.Attendance.Present),
			"Absent":     strconv.Itoa(summary.Attendance.Absent),
			"Percentage": fmt.Sprintf("%d%%", summary.Attendance.Percentage),
		})
	}
	return dataset, "Attendance Report", nil
}

func (s *ExportService) buildAssignmentDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	term := params.Term
	if term == "" {
		term = models.TermFirst
	}
	rows, err := s.academics.AssignmentTable(ctx, params.Class, params.Subject, term)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{
		Headers: []string{"Index No", "Student", "A1", "A2", "A3", "A4", "A5", "Total", "Average", "Grade"},
	}
	for _, row := range rows {
		record := map[string]string{
			"Index No": row.IndexNumber,
			"Student":  row.StudentName,
			"Total":    strconv.Itoa(row.Total),
			"Average":  formatOptionalInt(row.Average),
			"Grade":    string(row.Grade),
		}
		for i, marks := range row.Marks {
			record[fmt.Sprintf("A%d", i+1)] = formatOptionalInt(marks)
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset, fmt.Sprintf("Assignment Marks (%s term)", term), nil
}

func (s *ExportService) buildTermTestDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	rows, err := s.academics.TermTestTable(ctx, params.Class, params.Subject)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataset := export.Dataset{
		Headers: []string{"Index No", "Student", "Term 1", "Term 2", "Term 3", "Average", "Grade"},
	}
	for _, row := range rows {
		record := map[string]string{
			"Index No": row.IndexNumber,
			"Student":  row.StudentName,
			"Average":  formatOptionalInt(row.Average),
			"Grade":    string(row.Grade),
		}
		for i, marks := range row.Marks {
			record[fmt.Sprintf("Term %d", i+1)] = formatOptionalInt(marks)
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset, "Term Test Marks", nil
}

func (s *ExportService) buildOverallDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	summaries := s.performance.Summaries(ctx, params.Class)
	dataset := export.Dataset{
		Headers: []string{"Index No", "Student", "Class", "Attendance %", "Assignment Avg", "Term Test Avg", "Score", "Level"},
	}
	for _, summary := range summaries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Index No":       summary.Student.IndexNumber,
			"Student":        summary.Student.Name,
			"Class":          summary.Student.Class,
			"Attendance %":   strconv.Itoa(summary.Attendance.Percentage),
			"Assignment Avg": strconv.Itoa(summary.Academics.AssignmentAvg),
			"Term Test Avg":  strconv.Itoa(summary.Academics.TermTestAvg),
			"Score":          strconv.Itoa(summary.Performance.Score),
			"Level":          string(summary.Performance.Level),
		})
	}
	return dataset, "Overall Performance", nil
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
