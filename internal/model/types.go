package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tinytelemetry/recall/internal/srs"
)

var (
	ErrCardNotFound  = errors.New("card not found")
	ErrInvalidCardID = errors.New("invalid card id")
	ErrEmptyContent  = errors.New("card front and back must not be empty")
)

// CardID is the opaque identity of a card.
type CardID string

// NewCardID returns a fresh random identity.
func NewCardID() CardID {
	return CardID(uuid.NewString())
}

// ParseCardID validates s and returns it in canonical form.
func ParseCardID(s string) (CardID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCardID, s)
	}
	return CardID(u.String()), nil
}

func (id CardID) String() string { return string(id) }

// Card is a learning item with opaque content and its schedule.
// The embedded schedule is serialized inline: interval, easeFactor,
// repetitions, nextReview.
type Card struct {
	ID    CardID `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
	srs.State
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CardDraft is the content needed to create a card.
type CardDraft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Normalize trims both sides and rejects empty content.
func (d CardDraft) Normalize() (CardDraft, error) {
	d.Front = strings.TrimSpace(d.Front)
	d.Back = strings.TrimSpace(d.Back)
	if d.Front == "" || d.Back == "" {
		return d, ErrEmptyContent
	}
	return d, nil
}

// ReviewLog records one applied review and the schedule it produced.
type ReviewLog struct {
	ID         int64       `json:"id"`
	CardID     CardID      `json:"cardId"`
	Quality    srs.Quality `json:"quality"`
	ReviewedAt time.Time   `json:"reviewedAt"`
	srs.State
}

// ReviewStats aggregates the review log.
type ReviewStats struct {
	Total  int64 `json:"total"`
	Passed int64 `json:"passed"`
}

// Stats summarizes a collection at one instant.
type Stats struct {
	TotalCards   int64 `json:"totalCards"`
	DueCards     int64 `json:"dueCards"`
	NewCards     int64 `json:"newCards"`
	Learning     int64 `json:"learningCards"`
	Mastered     int64 `json:"masteredCards"`
	TotalReviews int64 `json:"totalReviews"`
	SuccessRate  int   `json:"successRate"` // percent of reviews with quality >= 3
}
