package models

import "time"

// RecordType distinguishes the two kinds of academic records.
type RecordType string

const (
	RecordAssignment RecordType = "assignment"
	RecordTermTest   RecordType = "termtest"
)

// Valid returns true when the type is a supported value.
func (t RecordType) Valid() bool {
	return t == RecordAssignment || t == RecordTermTest
}

// MaxMarks returns the marks ceiling for the record type.
func (t RecordType) MaxMarks() int {
	if t == RecordAssignment {
		return MaxAssignmentMarks
	}
	return MaxTermTestMarks
}

// Term identifies an academic period.
type Term string

const (
	TermFirst  Term = "first"
	TermSecond Term = "second"
	TermThird  Term = "third"
)

// Valid returns true when the term is a supported value.
func (t Term) Valid() bool {
	switch t {
	case TermFirst, TermSecond, TermThird:
		return true
	default:
		return false
	}
}

// Ordinal returns the 1-based position of the term, 0 for unknown terms.
func (t Term) Ordinal() int {
	switch t {
	case TermFirst:
		return 1
	case TermSecond:
		return 2
	case TermThird:
		return 3
	default:
		return 0
	}
}

// TermByOrdinal maps a 1-based slot number back to its term.
func TermByOrdinal(n int) Term {
	switch n {
	case 1:
		return TermFirst
	case 2:
		return TermSecond
	case 3:
		return TermThird
	default:
		return ""
	}
}

// Marks ceilings and slot counts.
const (
	MaxAssignmentMarks = 20
	MaxTermTestMarks   = 100
	AssignmentSlots    = 5
	TermTestSlots      = 3
)

// AcademicRecord is the canonical discrete mark entry. StudentName and
// Class are denormalised for ledger rebuilds of rows whose student was
// never linked to a roster entry.
type AcademicRecord struct {
	ID               string      `json:"id"`
	StudentID        string      `json:"studentId"`
	StudentName      string      `json:"studentName,omitempty"`
	Class            string      `json:"class,omitempty"`
	Type             RecordType  `json:"type"`
	Subject          string      `json:"subject"`
	Term             Term        `json:"term"`
	Marks            int         `json:"marks"`
	MaxMarks         int         `json:"maxMarks"`
	AssignmentNumber int         `json:"assignmentNumber,omitempty"`
	Grade            LetterGrade `json:"grade"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// AcademicFilter scopes record listing.
type AcademicFilter struct {
	StudentID string
	Type      RecordType
	Subject   string
	Term      Term
}

// AcademicStats summarises a student's marks. AssignmentAvg is the mean of
// the raw 0-20 marks and is deliberately not rescaled here; the assignment
// table exposes the 0-100 figure separately.
type AcademicStats struct {
	AssignmentAvg int `json:"assignmentAvg"`
	TermTestAvg   int `json:"termtestAvg"`
	Total         int `json:"total"`
}

// AssignmentTableRow is one student's row in the assignment marks table.
// Average is the 0-100 rescaled mean (mean of raw marks times five).
type AssignmentTableRow struct {
	StudentID   string      `json:"studentId"`
	IndexNumber string      `json:"indexNumber"`
	StudentName string      `json:"studentName"`
	Marks       [5]*int     `json:"marks"`
	Total       int         `json:"total"`
	Average     *int        `json:"average"`
	Grade       LetterGrade `json:"grade,omitempty"`
}

// TermTestTableRow is one student's row in the term test marks table.
type TermTestTableRow struct {
	StudentID   string      `json:"studentId"`
	IndexNumber string      `json:"indexNumber"`
	StudentName string      `json:"studentName"`
	Marks       [3]*int     `json:"marks"`
	Average     *int        `json:"average"`
	Grade       LetterGrade `json:"grade,omitempty"`
}

// LegacyGrade is the superseded flat grade entry kept for backward
// compatibility. New code paths never append to this collection.
type LegacyGrade struct {
	ID         string  `json:"id"`
	StudentID  string  `json:"studentId"`
	Subject    string  `json:"subject"`
	Percentage float64 `json:"percentage"`
	CreatedAt  string  `json:"createdAt,omitempty"`
}
