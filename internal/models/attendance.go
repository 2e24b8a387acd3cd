package models

// AttendanceStatus is the per-student daily mark.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// AttendanceDay holds the statuses recorded for one calendar date.
// A day whose Students map is empty was opened but never marked and does
// not count as held.
type AttendanceDay struct {
	Date     string                      `json:"date"`
	Students map[string]AttendanceStatus `json:"students"`
}

// AttendanceStats summarises one student's attendance.
// Total counts the days that mention the student regardless of status;
// Percentage is computed against the global days-held figure.
type AttendanceStats struct {
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// AttendanceOverview reports the process-wide calendar figures.
type AttendanceOverview struct {
	DaysHeld        int    `json:"daysHeld"`
	AvailableDays   int    `json:"availableDays"`
	TotalSchoolDays int    `json:"totalSchoolDays"`
	StartDate       string `json:"startDate"`
}
