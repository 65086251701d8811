package srs

import (
	"math"
	"time"
)

// minEase is MinEaseFactor as a multiplier.
const minEase = float64(MinEaseFactor) / 100

// fixedIntervals maps the repetition count reached by a passing review to its
// interval in days. Counts past the table grow by the ease factor.
var fixedIntervals = map[int]int{
	1: 1,
	2: 6,
}

// Transition applies one review of grade q at instant now to s and returns the
// next schedule. It never mutates s and is deterministic in its inputs.
//
// An out-of-range q yields ErrInvalidQuality. A state that already violates
// its invariants (for example a corrupted ease factor below the floor) is
// rejected with ErrInvariantViolation rather than repaired. On error s is
// returned unchanged.
func Transition(s State, q Quality, now time.Time) (State, error) {
	if _, err := ParseQuality(int(q)); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}

	ease := nextEase(float64(s.EaseFactor)/100, q)

	next := State{EaseFactor: storedEase(ease)}
	switch q.Outcome() {
	case Pass:
		next.Repetitions = s.Repetitions
		if next.Repetitions < math.MaxInt {
			next.Repetitions++
		}
		next.Interval = passInterval(next.Repetitions, s.Interval, ease)
	case Fail:
		next.Repetitions = 0
		next.Interval = 1
	}
	next.NextReview = now.AddDate(0, 0, next.Interval)
	return next, nil
}

// Preview returns the state each grade would produce at now, without
// committing to any of them.
func Preview(s State, now time.Time) (map[Quality]State, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make(map[Quality]State, len(Qualities))
	for _, q := range Qualities {
		next, err := Transition(s, q, now)
		if err != nil {
			return nil, err
		}
		out[q] = next
	}
	return out, nil
}

// nextEase computes EF' = max(1.3, EF + (0.1 - d*(0.08 + d*0.02))) with d = 5-q.
func nextEase(ease float64, q Quality) float64 {
	d := float64(Perfect - q)
	return math.Max(minEase, ease+(0.1-d*(0.08+d*0.02)))
}

// storedEase converts a multiplier to hundredths, re-applying the floor after rounding.
func storedEase(ease float64) int {
	return max(MinEaseFactor, int(math.Round(math.Min(ease*100, math.MaxInt32))))
}

// passInterval returns the interval for a passing review that brought the
// streak to reps. The floored ease multiplier drives growth from the third
// repetition on, up to MaxInterval.
func passInterval(reps, prevInterval int, ease float64) int {
	if days, ok := fixedIntervals[reps]; ok {
		return days
	}
	days := math.Min(float64(prevInterval)*ease, MaxInterval)
	return int(math.Round(days))
}
