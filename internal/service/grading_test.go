package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nipuna-lk/edutrack-api/internal/models"
)

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		percentage float64
		want       models.LetterGrade
	}{
		{100, models.GradeA},
		{75, models.GradeA},
		{74.9, models.GradeB},
		{65, models.GradeB},
		{64, models.GradeC},
		{55, models.GradeC},
		{54, models.GradeS},
		{45, models.GradeS},
		{44.9, models.GradeF},
		{0, models.GradeF},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.percentage), "percentage %v", tc.percentage)
	}
}

func TestPerformanceLevelThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  models.PerformanceLevel
	}{
		{100, models.LevelExcellent},
		{85, models.LevelExcellent},
		{84, models.LevelGood},
		{70, models.LevelGood},
		{69, models.LevelAverage},
		{55, models.LevelAverage},
		{54, models.LevelPoor},
		{45, models.LevelPoor},
		{0, models.LevelPoor},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PerformanceLevelFor(tc.score), "score %d", tc.score)
	}
}

func TestRoundHalf(t *testing.T) {
	assert.Equal(t, 1, roundHalf(0.5))
	assert.Equal(t, 0, roundHalf(0.4))
	assert.Equal(t, 50, roundHalf(49.5))
}
