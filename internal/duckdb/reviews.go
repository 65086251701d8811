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

// ApplyReview reads the card, computes its next schedule with fn, and writes
// the schedule plus a review_log row in one transaction. The store write lock
// is held for the whole cycle, so two reviews of the same card can never
// interleave and lose an update. If fn fails nothing is written.
func (s *Store) ApplyReview(ctx context.Context, id CardID, quality srs.Quality, now time.Time, fn model.ReviewFunc) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Card{}, err
	}
	defer tx.Rollback()

	card, err := scanCard(tx.QueryRowContext(ctx, selectCards+` WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, fmt.Errorf("duckdb: card %s: %w", id, model.ErrCardNotFound)
	}
	if err != nil {
		return Card{}, err
	}

	next, err := fn(card)
	if err != nil {
		return Card{}, err
	}
	if err := next.Validate(); err != nil {
		return Card{}, err
	}
	now = dbTime(now)
	next.NextReview = dbTime(next.NextReview)

	if _, err := tx.ExecContext(ctx, `UPDATE cards
		SET interval_days = ?, ease_factor = ?, repetitions = ?, next_review = ?, updated_at = ?
		WHERE id = ?`,
		next.Interval, next.EaseFactor, next.Repetitions, next.NextReview, now, string(id)); err != nil {
		return Card{}, fmt.Errorf("update card: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO review_log
		(card_id, quality, reviewed_at, interval_days, ease_factor, repetitions, next_review)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(id), int(quality), now, next.Interval, next.EaseFactor, next.Repetitions, next.NextReview); err != nil {
		return Card{}, fmt.Errorf("append review log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Card{}, err
	}

	card.State = next
	card.UpdatedAt = now
	return card, nil
}

// ReviewStats counts all logged reviews and those that passed.
func (s *Store) ReviewStats(ctx context.Context) (ReviewStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var st ReviewStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE quality >= ?) FROM review_log`,
		int(srs.PassingQuality)).Scan(&st.Total, &st.Passed)
	return st, err
}

// ReviewHistory returns the most recent reviews of one card, newest first.
func (s *Store) ReviewHistory(ctx context.Context, id CardID, limit int) ([]ReviewLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, card_id, quality, reviewed_at, interval_days, ease_factor, repetitions, next_review
		FROM review_log
		WHERE card_id = ?
		ORDER BY reviewed_at DESC, id DESC
		LIMIT ?`, string(id), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []ReviewLog{}
	for rows.Next() {
		var l ReviewLog
		var cardID string
		var quality int
		if err := rows.Scan(&l.ID, &cardID, &quality, &l.ReviewedAt, &l.Interval, &l.EaseFactor, &l.Repetitions, &l.NextReview); err != nil {
			log.Printf("duckdb scan error (ReviewHistory): %v", err)
			continue
		}
		l.CardID = CardID(cardID)
		l.Quality = srs.Quality(quality)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteReviewsBefore removes review_log rows older than cutoff and returns
// how many were deleted. Card schedules are not affected.
func (s *Store) DeleteReviewsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM review_log WHERE reviewed_at < ?`, dbTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
