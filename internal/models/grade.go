package models

// LetterGrade is the classification assigned to a percentage score.
type LetterGrade string

const (
	GradeA LetterGrade = "A"
	GradeB LetterGrade = "B"
	GradeC LetterGrade = "C"
	GradeS LetterGrade = "S"
	GradeF LetterGrade = "F"
)

// Valid returns true when the grade is a supported value.
func (g LetterGrade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeS, GradeF:
		return true
	default:
		return false
	}
}

// PerformanceLevel is the qualitative bucket for an overall score.
type PerformanceLevel string

const (
	LevelExcellent PerformanceLevel = "Excellent"
	LevelGood      PerformanceLevel = "Good"
	LevelAverage   PerformanceLevel = "Average"
	LevelPoor      PerformanceLevel = "Poor"
)

// OverallPerformance is the weighted score combining attendance and marks.
type OverallPerformance struct {
	Score int              `json:"score"`
	Level PerformanceLevel `json:"level"`
}
