package service

import (
	"math"

	"github.com/nipuna-lk/edutrack-api/internal/models"
)

// Classify maps a 0-100 percentage to its letter grade.
func Classify(percentage float64) models.LetterGrade {
	switch {
	case percentage >= 75:
		return models.GradeA
	case percentage >= 65:
		return models.GradeB
	case percentage >= 55:
		return models.GradeC
	case percentage >= 45:
		return models.GradeS
	default:
		return models.GradeF
	}
}

// PerformanceLevelFor maps an overall score to its qualitative level.
func PerformanceLevelFor(score int) models.PerformanceLevel {
	switch {
	case score >= 85:
		return models.LevelExcellent
	case score >= 70:
		return models.LevelGood
	case score >= 55:
		return models.LevelAverage
	default:
		return models.LevelPoor
	}
}

// roundHalf rounds half away from zero, matching the legacy client's
// Math.round for the non-negative values used here.
func roundHalf(v float64) int {
	return int(math.Round(v))
}
