package srs

import "math"

// Mastery is a coarse progress bucket derived from the repetition streak.
type Mastery string

const (
	MasteryNew      Mastery = "new"
	MasteryLearning Mastery = "learning"
	MasteryMastered Mastery = "mastered"
)

// MasteredRepetitions is the streak length at which a card counts as mastered.
const MasteredRepetitions = 4

// MasteryOf buckets a repetition streak.
func MasteryOf(repetitions int) Mastery {
	switch {
	case repetitions <= 0:
		return MasteryNew
	case repetitions < MasteredRepetitions:
		return MasteryLearning
	default:
		return MasteryMastered
	}
}

// SuccessRate returns passed/total as a whole percentage, 0 when total is 0.
func SuccessRate(total, passed int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(passed) / float64(total) * 100))
}
