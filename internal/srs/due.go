package srs

import (
	"slices"
	"time"
)

// DefaultDueLimit caps a due set when the caller gives no usable limit.
const DefaultDueLimit = 20

// Scheduled is anything that carries a schedule, typically a card.
type Scheduled interface {
	ScheduleState() State
}

// NormalizeLimit maps a missing or non-positive limit to DefaultDueLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultDueLimit
	}
	return limit
}

// SelectDue returns at most limit items whose next review is at or before
// now. Items are ordered oldest-due first; ties keep their input order, so a
// fixed snapshot always yields the same selection. The input is not modified.
//
// Stores that hold cards in a database answer the same question in their
// query language; duckdb.Store.DueCards is the SQL rendition and must agree
// with this function for any snapshot.
func SelectDue[T Scheduled](items []T, now time.Time, limit int) []T {
	limit = NormalizeLimit(limit)

	due := make([]T, 0, min(limit, len(items)))
	for _, it := range items {
		if it.ScheduleState().IsDue(now) {
			due = append(due, it)
		}
	}
	slices.SortStableFunc(due, func(a, b T) int {
		return a.ScheduleState().NextReview.Compare(b.ScheduleState().NextReview)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due
}
