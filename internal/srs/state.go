package srs

import (
	"fmt"
	"time"
)

const (
	// MinEaseFactor is the ease factor floor in hundredths (1.30×).
	MinEaseFactor = 130
	// InitialEaseFactor is the ease factor of a card that has never been reviewed (2.50×).
	InitialEaseFactor = 250
	// MaxInterval caps the gap between reviews at 100 years, keeping
	// NextReview representable in time.Time and in storage.
	MaxInterval = 36500
)

// State is the scheduling-relevant part of a card.
// EaseFactor is stored in hundredths: 250 means 2.50×.
type State struct {
	Interval    int       `json:"interval"`    // days until next review, at most MaxInterval; 0 = never passed.
	EaseFactor  int       `json:"easeFactor"`  // hundredths, >= MinEaseFactor.
	Repetitions int       `json:"repetitions"` // consecutive passing reviews.
	NextReview  time.Time `json:"nextReview"`
}

// NewState returns the initial configuration for a card entering the system
// at now. The card is due immediately.
func NewState(now time.Time) State {
	return State{
		Interval:    0,
		EaseFactor:  InitialEaseFactor,
		Repetitions: 0,
		NextReview:  now,
	}
}

// Validate reports an ErrInvariantViolation if s breaks any schedule invariant.
func (s State) Validate() error {
	if s.EaseFactor < MinEaseFactor {
		return fmt.Errorf("%w: ease factor %d below floor %d", ErrInvariantViolation, s.EaseFactor, MinEaseFactor)
	}
	if s.Interval < 0 {
		return fmt.Errorf("%w: negative interval %d", ErrInvariantViolation, s.Interval)
	}
	if s.Interval > MaxInterval {
		return fmt.Errorf("%w: interval %d above cap %d", ErrInvariantViolation, s.Interval, MaxInterval)
	}
	if s.Repetitions < 0 {
		return fmt.Errorf("%w: negative repetitions %d", ErrInvariantViolation, s.Repetitions)
	}
	if s.Repetitions > 0 && s.Interval == 0 {
		return fmt.Errorf("%w: %d repetitions with zero interval", ErrInvariantViolation, s.Repetitions)
	}
	return nil
}

// ScheduleState returns s. It lets State and any type embedding it satisfy Scheduled.
func (s State) ScheduleState() State {
	return s
}

// IsDue reports whether s is eligible for review at now. The boundary is
// inclusive: a card due exactly at now is due.
func (s State) IsDue(now time.Time) bool {
	return !s.NextReview.After(now)
}
