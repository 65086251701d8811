// Package review implements the study workflow on top of a card store:
// choosing the due set for a session, grading cards, and bulk creation.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tinytelemetry/recall/internal/model"
	"github.com/tinytelemetry/recall/internal/srs"
)

// MaxImportCards bounds a single bulk import.
const MaxImportCards = 1000

var (
	ErrEmptyImport    = errors.New("review: import contains no cards")
	ErrImportTooLarge = fmt.Errorf("review: import exceeds %d cards", MaxImportCards)
)

// Service runs the review workflow. It owns no state beyond its store handle
// and clock, so one Service can be shared by every request.
type Service struct {
	store    model.CardStore
	now      func() time.Time
	dueLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of review instants.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDueLimit sets the session size used when a caller gives no limit.
func WithDueLimit(n int) Option {
	return func(s *Service) { s.dueLimit = srs.NormalizeLimit(n) }
}

// NewService creates a review workflow over store.
func NewService(store model.CardStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		now:      time.Now,
		dueLimit: srs.DefaultDueLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Due returns the cards ready for review right now. A non-positive limit
// falls back to the configured session size.
func (s *Service) Due(ctx context.Context, limit int) ([]model.Card, error) {
	if limit <= 0 {
		limit = s.dueLimit
	}
	return s.store.DueCards(ctx, s.now(), limit)
}

// Submit grades one card. The grade is validated before the store is
// touched; an out-of-range grade is an error, never clamped.
func (s *Service) Submit(ctx context.Context, id model.CardID, quality int) (model.Card, error) {
	q, err := srs.ParseQuality(quality)
	if err != nil {
		return model.Card{}, err
	}
	now := s.now()
	return s.store.ApplyReview(ctx, id, q, now, func(c model.Card) (srs.State, error) {
		next, err := srs.Transition(c.State, q, now)
		if errors.Is(err, srs.ErrInvariantViolation) {
			log.Printf("review: card %s has a corrupt schedule: %v", c.ID, err)
		}
		return next, err
	})
}

// Preview returns what each grade would do to a card without recording anything.
func (s *Service) Preview(ctx context.Context, id model.CardID) (map[srs.Quality]srs.State, error) {
	c, err := s.store.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	return srs.Preview(c.State, s.now())
}

// Create adds one card.
func (s *Service) Create(ctx context.Context, draft model.CardDraft) (model.Card, error) {
	cards, err := s.store.CreateCards(ctx, []model.CardDraft{draft}, s.now())
	if err != nil {
		return model.Card{}, err
	}
	return cards[0], nil
}

// Import creates many cards at once. Either all are created or none.
func (s *Service) Import(ctx context.Context, drafts []model.CardDraft) ([]model.Card, error) {
	switch {
	case len(drafts) == 0:
		return nil, ErrEmptyImport
	case len(drafts) > MaxImportCards:
		return nil, ErrImportTooLarge
	}
	cards, err := s.store.CreateCards(ctx, drafts, s.now())
	if err != nil {
		return nil, err
	}
	log.Printf("review: imported %d cards", len(cards))
	return cards, nil
}

// Get returns one card.
func (s *Service) Get(ctx context.Context, id model.CardID) (model.Card, error) {
	return s.store.GetCard(ctx, id)
}

// List returns every card.
func (s *Service) List(ctx context.Context) ([]model.Card, error) {
	return s.store.ListCards(ctx)
}

// CardCount returns the collection size.
func (s *Service) CardCount(ctx context.Context) (int64, error) {
	return s.store.CardCount(ctx)
}

// Delete removes a card and its history.
func (s *Service) Delete(ctx context.Context, id model.CardID) error {
	return s.store.DeleteCard(ctx, id)
}

// History returns a card's most recent reviews, newest first.
func (s *Service) History(ctx context.Context, id model.CardID, limit int) ([]model.ReviewLog, error) {
	if _, err := s.store.GetCard(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ReviewHistory(ctx, id, limit)
}

// Stats summarizes the collection at the current instant.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	reviews, err := s.store.ReviewStats(ctx)
	if err != nil {
		return model.Stats{}, err
	}

	st := model.Stats{
		TotalCards:   int64(len(cards)),
		DueCards:     int64(len(srs.SelectDue(cards, s.now(), len(cards)))),
		TotalReviews: reviews.Total,
		SuccessRate:  srs.SuccessRate(reviews.Total, reviews.Passed),
	}
	for _, c := range cards {
		switch srs.MasteryOf(c.Repetitions) {
		case srs.MasteryNew:
			st.NewCards++
		case srs.MasteryLearning:
			st.Learning++
		case srs.MasteryMastered:
			st.Mastered++
		}
	}
	return st, nil
}
