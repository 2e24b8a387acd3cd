package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	"github.com/nipuna-lk/edutrack-api/internal/repository"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
	"github.com/nipuna-lk/edutrack-api/pkg/jobs"
	"github.com/nipuna-lk/edutrack-api/pkg/storage"
)

type fakeDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (f *fakeDispatcher) Enqueue(job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

func newReportFixture(t *testing.T) (*ReportService, *fakeDispatcher) {
	store := newStoreForTest(t)
	store.AddStudent(models.Student{ID: "s1", Name: "Kasun Perera", IndexNumber: "ST001", Class: "10-A"})
	store.SetAttendanceStatus("2025-09-01", "s1", models.AttendancePresent)
	store.AddAcademicRecord(models.AcademicRecord{
		ID: "r1", StudentID: "s1", Type: models.RecordTermTest, Subject: "Maths",
		Term: models.TermFirst, Marks: 80, MaxMarks: 100, Grade: models.GradeA,
	})

	attendance := NewAttendanceService(store, nil, nil)
	academics := NewAcademicService(store, "Maths", nil, nil)
	performance := NewPerformanceService(store, attendance, academics, nil)

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	exporter := NewExportService(attendance, academics, performance, files, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)

	dispatcher := &fakeDispatcher{}
	svc := NewReportService(repository.NewReportJobRegistry(), dispatcher, exporter, nil)
	return svc, dispatcher
}

func TestReportCreateJobQueues(t *testing.T) {
	svc, dispatcher := newReportFixture(t)

	job, err := svc.CreateJob(context.Background(), CreateReportRequest{Type: "overall", Format: "csv"}, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, job.ID, dispatcher.enqueued[0].ID)

	got, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", got.CreatedBy)
}

func TestReportCreateJobValidation(t *testing.T) {
	svc, _ := newReportFixture(t)
	ctx := context.Background()

	_, err := svc.CreateJob(ctx, CreateReportRequest{Type: "behaviour", Format: "csv"}, "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateJob(ctx, CreateReportRequest{Type: "overall", Format: "xlsx"}, "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateJob(ctx, CreateReportRequest{Type: "assignment", Format: "csv", Term: "fourth"}, "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportProcessAndDownload(t *testing.T) {
	svc, _ := newReportFixture(t)
	ctx := context.Background()

	job, err := svc.CreateJob(ctx, CreateReportRequest{Type: "overall", Format: "csv"}, "teacher-1")
	require.NoError(t, err)

	require.NoError(t, svc.Process(ctx, jobs.Job{ID: job.ID, Type: string(job.Type)}))

	finished, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, finished.Status)
	assert.Equal(t, 100, finished.Progress)
	require.NotNil(t, finished.ResultURL)

	token := (*finished.ResultURL)[len("/api/v1/reports/download/"):]
	download, err := svc.ResolveDownload(ctx, token)
	require.NoError(t, err)
	defer download.File.Close()

	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Kasun Perera")
	assert.Equal(t, models.ReportFormatCSV, download.Format)
}

func TestReportResolveDownloadRejectsBadToken(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, err := svc.ResolveDownload(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportProcessUnknownJobIsNoop(t *testing.T) {
	svc, _ := newReportFixture(t)
	assert.NoError(t, svc.Process(context.Background(), jobs.Job{ID: "missing"}))
}
