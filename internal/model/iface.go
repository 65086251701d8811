package model

import (
	"context"
	"time"

	"github.com/tinytelemetry/recall/internal/srs"
)

// CardReader provides read-only access to cards.
type CardReader interface {
	GetCard(ctx context.Context, id CardID) (Card, error)
	ListCards(ctx context.Context) ([]Card, error)
	DueCards(ctx context.Context, now time.Time, limit int) ([]Card, error)
	CardCount(ctx context.Context) (int64, error)
}

// CardWriter creates and removes cards. New cards always start from
// srs.NewState(now).
type CardWriter interface {
	CreateCards(ctx context.Context, drafts []CardDraft, now time.Time) ([]Card, error)
	DeleteCard(ctx context.Context, id CardID) error
}

// ReviewFunc computes a card's next schedule from its current state.
type ReviewFunc func(card Card) (srs.State, error)

// ReviewStore records reviews.
//
// ApplyReview is atomic per card: the card is read, fn is called, and the
// result is persisted with no other review of the same card in between.
// When fn fails nothing is written.
type ReviewStore interface {
	ApplyReview(ctx context.Context, id CardID, quality srs.Quality, now time.Time, fn ReviewFunc) (Card, error)
	ReviewStats(ctx context.Context) (ReviewStats, error)
	ReviewHistory(ctx context.Context, id CardID, limit int) ([]ReviewLog, error)
}

// CardStore is the full storage contract consumed by the review workflow.
type CardStore interface {
	CardReader
	CardWriter
	ReviewStore
}
