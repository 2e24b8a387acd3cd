package models

import "time"

// ReportType selects the aggregate a report renders.
type ReportType string

const (
	ReportTypeAttendance ReportType = "attendance"
	ReportTypeAssignment ReportType = "assignment"
	ReportTypeTermTest   ReportType = "termtest"
	ReportTypeOverall    ReportType = "overall"
)

// ReportFormat selects the rendered file format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus tracks job lifecycle.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "queued"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusFinished   ReportStatus = "finished"
	ReportStatusFailed     ReportStatus = "failed"
)

// ReportJobParams scope a report to a class/subject/term.
type ReportJobParams struct {
	Class   string       `json:"class,omitempty"`
	Subject string       `json:"subject,omitempty"`
	Term    Term         `json:"term,omitempty"`
	Format  ReportFormat `json:"format"`
}

// ReportJob is a queued report generation request.
type ReportJob struct {
	ID           string          `json:"id"`
	Type         ReportType      `json:"type"`
	Params       ReportJobParams `json:"params"`
	Status       ReportStatus    `json:"status"`
	Progress     int             `json:"progress"`
	ResultURL    *string         `json:"result_url,omitempty"`
	ErrorMessage *string         `json:"error,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}
