package srs

import "fmt"

// Quality is the reviewer's self-assessed recall grade for one review,
// from 0 (total failure) to 5 (perfect recall).
type Quality int

const (
	Blackout  Quality = iota // No recall at all.
	Incorrect                // Wrong, but the answer was familiar once shown.
	Familiar                 // Wrong, but the answer seemed easy once shown.
	Difficult                // Correct with serious difficulty.
	Hesitant                 // Correct after some hesitation.
	Perfect                  // Correct with no hesitation.
)

// PassingQuality is the lowest grade that counts as a successful recall.
const PassingQuality = Difficult

var qualityNames = [...]string{
	Blackout:  "Blackout",
	Incorrect: "Incorrect",
	Familiar:  "Familiar",
	Difficult: "Difficult",
	Hesitant:  "Hesitant",
	Perfect:   "Perfect",
}

// Qualities lists every valid grade in ascending order.
var Qualities = []Quality{Blackout, Incorrect, Familiar, Difficult, Hesitant, Perfect}

var _ fmt.Stringer = Quality(0)

// IsValid reports whether q lies in [Blackout, Perfect].
func (q Quality) IsValid() bool {
	return q >= Blackout && q <= Perfect
}

// String returns the grade name, or "Quality(n)" for out-of-range values.
func (q Quality) String() string {
	if q.IsValid() {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality converts a raw integer grade, rejecting anything outside [0,5].
// The value is never clamped.
func ParseQuality(n int) (Quality, error) {
	q := Quality(n)
	if !q.IsValid() {
		return 0, fmt.Errorf("%w: %d not in [0, 5]", ErrInvalidQuality, n)
	}
	return q, nil
}

// Outcome classifies a review as passed or failed.
type Outcome int

const (
	Fail Outcome = iota
	Pass
)

func (o Outcome) String() string {
	if o == Pass {
		return "Pass"
	}
	return "Fail"
}

// Outcome returns Pass for grades at or above PassingQuality.
func (q Quality) Outcome() Outcome {
	if q >= PassingQuality {
		return Pass
	}
	return Fail
}
