package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tinytelemetry/recall/internal/model"
	"github.com/tinytelemetry/recall/internal/srs"
)

const selectCards = `SELECT id, front, back, interval_days, ease_factor, repetitions, next_review, created_at, updated_at FROM cards`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (Card, error) {
	var c Card
	var id string
	err := row.Scan(&id, &c.Front, &c.Back, &c.Interval, &c.EaseFactor, &c.Repetitions, &c.NextReview, &c.CreatedAt, &c.UpdatedAt)
	c.ID = CardID(id)
	return c, err
}

func scanCards(rows *sql.Rows, op string) ([]Card, error) {
	defer rows.Close()
	cards := []Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Printf("duckdb scan error (%s): %v", op, err)
			continue
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CreateCards inserts all drafts in one transaction, each starting from the
// initial schedule at now. Either every card is created or none is.
func (s *Store) CreateCards(ctx context.Context, drafts []CardDraft, now time.Time) ([]Card, error) {
	normalized := make([]CardDraft, len(drafts))
	for i, d := range drafts {
		n, err := d.Normalize()
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		normalized[i] = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cards
		(id, front, back, interval_days, ease_factor, repetitions, next_review, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now = dbTime(now)
	cards := make([]Card, 0, len(normalized))
	for _, d := range normalized {
		c := Card{
			ID:        model.NewCardID(),
			Front:     d.Front,
			Back:      d.Back,
			State:     srs.NewState(now),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := stmt.ExecContext(ctx, string(c.ID), c.Front, c.Back,
			c.Interval, c.EaseFactor, c.Repetitions, c.NextReview, c.CreatedAt, c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("insert card: %w", err)
		}
		cards = append(cards, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCard returns one card or model.ErrCardNotFound.
func (s *Store) GetCard(ctx context.Context, id CardID) (Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	c, err := scanCard(s.db.QueryRowContext(ctx, selectCards+` WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, fmt.Errorf("duckdb: card %s: %w", id, model.ErrCardNotFound)
	}
	return c, err
}

// ListCards returns every card in creation order.
func (s *Store) ListCards(ctx context.Context) ([]Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, selectCards+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return scanCards(rows, "ListCards")
}

// DueCards returns up to limit cards whose next review is at or before now,
// oldest-due first. A non-positive limit means srs.DefaultDueLimit. The
// ordering has a total tie-break so a fixed snapshot always yields the same set.
func (s *Store) DueCards(ctx context.Context, now time.Time, limit int) ([]Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		selectCards+` WHERE next_review <= ? ORDER BY next_review, created_at, id LIMIT ?`,
		dbTime(now), srs.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanCards(rows, "DueCards")
}

// CardCount returns the number of stored cards.
func (s *Store) CardCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n)
	return n, err
}

// DeleteCard removes a card and its review history.
func (s *Store) DeleteCard(ctx context.Context, id CardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM review_log WHERE card_id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete review log: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("duckdb: card %s: %w", id, model.ErrCardNotFound)
	}
	return tx.Commit()
}
