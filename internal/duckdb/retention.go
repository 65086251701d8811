package duckdb

import (
	"context"
	"log"
	"sync"
	"time"
)

// RetentionConfig holds configuration for the review-log retention cleaner.
type RetentionConfig struct {
	RetentionDays int
	Interval      time.Duration // zero → 1h
}

// RetentionCleaner periodically deletes review_log rows older than the
// retention period. Card schedules never expire.
type RetentionCleaner struct {
	store         *Store
	retentionDays int
	interval      time.Duration
	now           func() time.Time
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	wg            sync.WaitGroup
	stopOnce      sync.Once
}

// NewRetentionCleaner starts a cleaner. It returns nil when RetentionDays is
// 0 (disabled).
func NewRetentionCleaner(store *Store, conf RetentionConfig) *RetentionCleaner {
	if conf.RetentionDays <= 0 {
		return nil
	}
	interval := conf.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	rc := &RetentionCleaner{
		store:         store,
		retentionDays: conf.RetentionDays,
		interval:      interval,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	// Catch up after downtime.
	rc.cleanup(ctx)

	rc.wg.Add(1)
	go rc.tickLoop()
	return rc
}

func (rc *RetentionCleaner) tickLoop() {
	defer rc.wg.Done()
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rc.cleanup(rc.ctx)
		case <-rc.done:
			return
		}
	}
}

func (rc *RetentionCleaner) cleanup(ctx context.Context) int64 {
	cutoff := rc.now().AddDate(0, 0, -rc.retentionDays)

	rows, err := rc.store.DeleteReviewsBefore(ctx, cutoff)
	if err != nil {
		log.Printf("duckdb: review log retention error: %v", err)
		return 0
	}
	if rows > 0 {
		log.Printf("duckdb: review log retention deleted %d entries (older than %d days)", rows, rc.retentionDays)
	}
	return rows
}

// Stop signals the cleaner to stop and waits for it to finish. It is safe to
// call more than once.
func (rc *RetentionCleaner) Stop() {
	rc.stopOnce.Do(func() {
		rc.cancel()
		close(rc.done)
		rc.wg.Wait()
	})
}
