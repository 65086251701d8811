package srs

import (
	"errors"
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func mustTransition(t *testing.T, s State, q Quality, now time.Time) State {
	t.Helper()
	next, err := Transition(s, q, now)
	if err != nil {
		t.Fatalf("Transition(%+v, %v): %v", s, q, err)
	}
	return next
}

func TestNewState(t *testing.T) {
	s := NewState(t0)
	if s.Interval != 0 || s.EaseFactor != 250 || s.Repetitions != 0 {
		t.Errorf("NewState = %+v, want interval=0 ease=250 reps=0", s)
	}
	if !s.NextReview.Equal(t0) {
		t.Errorf("NextReview = %v, want %v", s.NextReview, t0)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("initial state invalid: %v", err)
	}
}

// --- concrete scenarios ---

func TestFirstReviewPerfect(t *testing.T) {
	got := mustTransition(t, NewState(t0), Perfect, t0)

	if got.Interval != 1 {
		t.Errorf("Interval = %d, want 1", got.Interval)
	}
	if got.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", got.Repetitions)
	}
	if want := t0.AddDate(0, 0, 1); !got.NextReview.Equal(want) {
		t.Errorf("NextReview = %v, want %v", got.NextReview, want)
	}
	// 2.50 + 0.10 on the multiplier.
	if got.EaseFactor != 260 {
		t.Errorf("EaseFactor = %d, want 260", got.EaseFactor)
	}
}

func TestThirdRepetitionGrowsByEase(t *testing.T) {
	s := State{Interval: 6, EaseFactor: 250, Repetitions: 2, NextReview: t0}
	got := mustTransition(t, s, Hesitant, t0)

	if got.Repetitions != 3 {
		t.Errorf("Repetitions = %d, want 3", got.Repetitions)
	}
	// Quality 4 leaves the ease unchanged: round(6 * 2.5) = 15.
	if got.EaseFactor != 250 {
		t.Errorf("EaseFactor = %d, want 250", got.EaseFactor)
	}
	if got.Interval != 15 {
		t.Errorf("Interval = %d, want 15", got.Interval)
	}
}

func TestLapseResetsStreak(t *testing.T) {
	s := State{Interval: 30, EaseFactor: 180, Repetitions: 5, NextReview: t0}
	got := mustTransition(t, s, Incorrect, t0)

	if got.Interval != 1 || got.Repetitions != 0 {
		t.Errorf("got interval=%d reps=%d, want interval=1 reps=0", got.Interval, got.Repetitions)
	}
	if got.EaseFactor >= 180 {
		t.Errorf("EaseFactor = %d, want decrease from 180", got.EaseFactor)
	}
	// 1.80 - 0.54 = 1.26, floored.
	if got.EaseFactor != MinEaseFactor {
		t.Errorf("EaseFactor = %d, want %d", got.EaseFactor, MinEaseFactor)
	}
}

func TestInvalidQualityRejected(t *testing.T) {
	s := State{Interval: 6, EaseFactor: 250, Repetitions: 2, NextReview: t0}
	for _, q := range []Quality{6, -1, 100} {
		got, err := Transition(s, q, t0)
		if !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("Transition(q=%d) err = %v, want ErrInvalidQuality", q, err)
		}
		if got != s {
			t.Errorf("Transition(q=%d) state = %+v, want unchanged %+v", q, got, s)
		}
	}
}

// --- ease factor ---

func TestEaseFactorByQuality(t *testing.T) {
	tests := []struct {
		q    Quality
		want int
	}{
		{Blackout, 170},
		{Incorrect, 196},
		{Familiar, 218},
		{Difficult, 236},
		{Hesitant, 250},
		{Perfect, 260},
	}
	for _, tt := range tests {
		got := mustTransition(t, NewState(t0), tt.q, t0)
		if got.EaseFactor != tt.want {
			t.Errorf("EaseFactor after %v = %d, want %d", tt.q, got.EaseFactor, tt.want)
		}
	}
}

func TestEaseFactorFloorHoldsUnderRepeatedBlackout(t *testing.T) {
	s := NewState(t0)
	now := t0
	for i := 0; i < 20; i++ {
		s = mustTransition(t, s, Blackout, now)
		if s.EaseFactor < MinEaseFactor {
			t.Fatalf("review %d: EaseFactor = %d below floor", i, s.EaseFactor)
		}
		now = s.NextReview
	}
	if s.EaseFactor != MinEaseFactor {
		t.Errorf("EaseFactor = %d, want floor %d", s.EaseFactor, MinEaseFactor)
	}
}

func TestFloorAppliedBeforeIntervalGrowth(t *testing.T) {
	// 1.30 + (0.1 - 0.14) = 1.26 → floored to 1.30 before use: round(10 * 1.3) = 13.
	s := State{Interval: 10, EaseFactor: 130, Repetitions: 3, NextReview: t0}
	got := mustTransition(t, s, Difficult, t0)
	if got.Interval != 13 {
		t.Errorf("Interval = %d, want 13", got.Interval)
	}
	if got.EaseFactor != 130 {
		t.Errorf("EaseFactor = %d, want 130", got.EaseFactor)
	}
}

// --- interval table ---

func TestFailingGradesReset(t *testing.T) {
	states := []State{
		NewState(t0),
		{Interval: 1, EaseFactor: 260, Repetitions: 1},
		{Interval: 6, EaseFactor: 200, Repetitions: 2},
		{Interval: 120, EaseFactor: 300, Repetitions: 9},
	}
	for _, s := range states {
		for _, q := range []Quality{Blackout, Incorrect, Familiar} {
			got := mustTransition(t, s, q, t0)
			if got.Repetitions != 0 || got.Interval != 1 {
				t.Errorf("%+v q=%v → reps=%d interval=%d, want 0 and 1", s, q, got.Repetitions, got.Interval)
			}
		}
	}
}

func TestPassingGradesIncrementStreak(t *testing.T) {
	states := []State{
		NewState(t0),
		{Interval: 1, EaseFactor: 140, Repetitions: 1},
		{Interval: 6, EaseFactor: 320, Repetitions: 2},
		{Interval: 45, EaseFactor: 210, Repetitions: 7},
	}
	for _, s := range states {
		for _, q := range []Quality{Difficult, Hesitant, Perfect} {
			got := mustTransition(t, s, q, t0)
			if got.Repetitions != s.Repetitions+1 {
				t.Errorf("%+v q=%v → reps=%d, want %d", s, q, got.Repetitions, s.Repetitions+1)
			}
		}
	}
}

func TestFixedStepsIgnoreEase(t *testing.T) {
	for _, ease := range []int{130, 250, 400} {
		first := mustTransition(t, State{Interval: 17, EaseFactor: ease, Repetitions: 0}, Perfect, t0)
		if first.Interval != 1 {
			t.Errorf("ease %d first pass interval = %d, want 1", ease, first.Interval)
		}
		second := mustTransition(t, State{Interval: 1, EaseFactor: ease, Repetitions: 1}, Difficult, t0)
		if second.Interval != 6 {
			t.Errorf("ease %d second pass interval = %d, want 6", ease, second.Interval)
		}
	}
}

func TestGrowthMatchesFormula(t *testing.T) {
	tests := []struct {
		interval, ease int
		q              Quality
	}{
		{6, 250, Difficult},
		{6, 250, Perfect},
		{15, 236, Hesitant},
		{40, 180, Perfect},
		{3, 130, Difficult},
	}
	for _, tt := range tests {
		s := State{Interval: tt.interval, EaseFactor: tt.ease, Repetitions: 2}
		got := mustTransition(t, s, tt.q, t0)
		ease := nextEase(float64(tt.ease)/100, tt.q)
		want := float64(tt.interval) * ease
		if math.Abs(float64(got.Interval)-want) > 0.5 {
			t.Errorf("interval=%d ease=%d q=%v → %d, want round(%.3f)", tt.interval, tt.ease, tt.q, got.Interval, want)
		}
	}
}

func TestNextReviewIsNowPlusInterval(t *testing.T) {
	s := NewState(t0)
	now := t0
	for _, q := range []Quality{Perfect, Perfect, Hesitant, Familiar, Difficult, Perfect} {
		s = mustTransition(t, s, q, now)
		if want := now.AddDate(0, 0, s.Interval); !s.NextReview.Equal(want) {
			t.Errorf("NextReview = %v, want %v", s.NextReview, want)
		}
		now = s.NextReview.Add(3 * time.Hour)
	}
}

func TestTransitionDeterministic(t *testing.T) {
	s := State{Interval: 11, EaseFactor: 233, Repetitions: 4, NextReview: t0}
	for _, q := range Qualities {
		a := mustTransition(t, s, q, t0)
		b := mustTransition(t, s, q, t0)
		if a != b {
			t.Errorf("q=%v: %+v != %+v", q, a, b)
		}
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	s := State{Interval: 6, EaseFactor: 250, Repetitions: 2, NextReview: t0}
	orig := s
	_ = mustTransition(t, s, Perfect, t0.AddDate(0, 0, 6))
	if s != orig {
		t.Errorf("input mutated: %+v, want %+v", s, orig)
	}
}

// --- long streaks ---

func TestPerfectStreakIntervals(t *testing.T) {
	want := []int{1, 6, 17, 49, 147, 456, 1459, 4815, 16371, MaxInterval, MaxInterval}
	s := NewState(t0)
	for i, w := range want {
		s = mustTransition(t, s, Perfect, s.NextReview)
		if s.Interval != w {
			t.Fatalf("review %d: interval = %d, want %d", i+1, s.Interval, w)
		}
	}
}

func TestLongPerfectStreakStaysValid(t *testing.T) {
	for _, q := range []Quality{Hesitant, Perfect} {
		s := NewState(t0)
		now := t0
		for i := 1; i <= 50; i++ {
			next := mustTransition(t, s, q, now)
			if err := next.Validate(); err != nil {
				t.Fatalf("%v review %d: %v", q, i, err)
			}
			if !next.NextReview.After(now) {
				t.Fatalf("%v review %d: NextReview %v not after %v", q, i, next.NextReview, now)
			}
			if !next.NextReview.Equal(now.AddDate(0, 0, next.Interval)) {
				t.Fatalf("%v review %d: NextReview %v != now + %d days", q, i, next.NextReview, next.Interval)
			}
			if next.Interval < s.Interval {
				t.Fatalf("%v review %d: interval shrank %d -> %d", q, i, s.Interval, next.Interval)
			}
			s, now = next, next.NextReview
		}
		if s.Interval != MaxInterval {
			t.Errorf("%v: interval after 50 reviews = %d, want %d", q, s.Interval, MaxInterval)
		}
		if s.Repetitions != 50 {
			t.Errorf("%v: repetitions = %d, want 50", q, s.Repetitions)
		}
	}
}

func TestGrowthClampedAtCap(t *testing.T) {
	got := mustTransition(t, State{Interval: 20000, EaseFactor: 250, Repetitions: 7}, Hesitant, t0)
	if got.Interval != MaxInterval {
		t.Errorf("Interval = %d, want %d", got.Interval, MaxInterval)
	}
	if !got.NextReview.Equal(t0.AddDate(0, 0, MaxInterval)) {
		t.Errorf("NextReview = %v, want t0 + %d days", got.NextReview, MaxInterval)
	}
}

// --- invalid incoming state ---

func TestInvalidStateRejected(t *testing.T) {
	tests := []struct {
		name string
		s    State
	}{
		{"ease below floor", State{Interval: 5, EaseFactor: 129, Repetitions: 3}},
		{"negative interval", State{Interval: -1, EaseFactor: 250}},
		{"negative repetitions", State{Interval: 1, EaseFactor: 250, Repetitions: -2}},
		{"streak without interval", State{Interval: 0, EaseFactor: 250, Repetitions: 2}},
		{"interval above cap", State{Interval: MaxInterval + 1, EaseFactor: 250, Repetitions: 12}},
	}
	for _, tt := range tests {
		got, err := Transition(tt.s, Perfect, t0)
		if !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("%s: err = %v, want ErrInvariantViolation", tt.name, err)
		}
		if got != tt.s {
			t.Errorf("%s: state changed to %+v", tt.name, got)
		}
	}
}

// --- Preview ---

func TestPreviewCoversEveryQuality(t *testing.T) {
	s := State{Interval: 6, EaseFactor: 250, Repetitions: 2, NextReview: t0}
	p, err := Preview(s, t0)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(p) != len(Qualities) {
		t.Fatalf("Preview returned %d states, want %d", len(p), len(Qualities))
	}
	for _, q := range Qualities {
		want := mustTransition(t, s, q, t0)
		if p[q] != want {
			t.Errorf("Preview[%v] = %+v, want %+v", q, p[q], want)
		}
	}
}

func TestPreviewRejectsInvalidState(t *testing.T) {
	_, err := Preview(State{EaseFactor: 100}, t0)
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("err = %v, want ErrInvariantViolation", err)
	}
}
