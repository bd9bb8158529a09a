package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// refreshBatchSize bounds how many creators one tick will recompute. The
// upstream APIs are quota-limited, so the worker trickles through the
// backlog instead of refreshing everything at once.
const refreshBatchSize = 5

// StaleLister enumerates creators whose results have aged past a cutoff.
type StaleLister interface {
	StaleBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// RefreshWorker is a periodic background job that recomputes the oldest
// stale results so interactive requests mostly hit fresh data.
type RefreshWorker struct {
	store    StaleLister
	svc      *InfluenceService
	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
}

// NewRefreshWorker creates a worker that ticks every interval.
func NewRefreshWorker(store StaleLister, svc *InfluenceService, interval time.Duration, logger zerolog.Logger) *RefreshWorker {
	return &RefreshWorker{
		store:    store,
		svc:      svc,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic refresh loop. It runs one tick immediately,
// then every interval, until the context is cancelled or Stop is called.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("refresh-worker: starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			w.logger.Info().Msg("refresh-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info().Msg("refresh-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *RefreshWorker) Stop() {
	close(w.stopCh)
}

// tick recomputes one batch of stale creators, oldest first. A failed
// refresh is logged and skipped; the creator stays in the backlog for the
// next tick.
func (w *RefreshWorker) tick(ctx context.Context) {
	start := time.Now()
	cutoff := start.Add(-model.FreshnessWindow)

	channelIDs, err := w.store.StaleBefore(ctx, cutoff, refreshBatchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("refresh-worker: stale scan failed")
		return
	}
	if len(channelIDs) == 0 {
		return
	}

	refreshed := 0
	for _, channelID := range channelIDs {
		if ctx.Err() != nil {
			return
		}
		result, err := w.svc.RefreshInfluence(ctx, channelID)
		if err != nil || result.Freshness == model.FreshnessStale {
			w.logger.Warn().Err(err).Str("channel_id", channelID).
				Msg("refresh-worker: refresh failed, will retry next tick")
			continue
		}
		refreshed++
	}

	w.logger.Info().
		Int("stale", len(channelIDs)).
		Int("refreshed", refreshed).
		Dur("took", time.Since(start).Round(time.Millisecond)).
		Msg("refresh-worker: tick complete")
}
