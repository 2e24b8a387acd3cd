package models

import "time"

// Student is a roster entry. IndexNumber is the school-issued identifier
// and must be unique across the roster.
type Student struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IndexNumber string    `json:"studentId"`
	Class       string    `json:"class"`
	Contact     string    `json:"contact,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StudentFilter scopes roster listing.
type StudentFilter struct {
	Search   string
	Class    string
	Page     int
	PageSize int
}

// StudentSummary aggregates the derived statistics rendered on a student card.
type StudentSummary struct {
	Student     Student            `json:"student"`
	Attendance  AttendanceStats    `json:"attendance"`
	Academics   AcademicStats      `json:"academics"`
	Performance OverallPerformance `json:"performance"`
}

// Pagination carries page metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
