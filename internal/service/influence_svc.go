package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sanks011/Influence-IQ/internal/analysis"
	"github.com/sanks011/Influence-IQ/internal/model"
	"github.com/sanks011/Influence-IQ/internal/scoring"
	"github.com/sanks011/Influence-IQ/pkg/format"
)

// InfluenceStore is the persistent store-of-record for scored results.
type InfluenceStore interface {
	Get(ctx context.Context, channelID string) (*model.InfluenceResult, error)
	Put(ctx context.Context, result *model.InfluenceResult) error
	TopByScore(ctx context.Context, limit int) ([]model.InfluenceResult, error)
}

// SignalAggregator resolves an identifier and gathers all source signals.
type SignalAggregator interface {
	Resolve(ctx context.Context, identifier string) (string, error)
	Aggregate(ctx context.Context, identifier string) (*model.ChannelSignal, error)
}

// ScoreSynthesizer turns an enriched signal into a scored synthesis. It
// never fails: on any external error it falls back to deterministic
// scoring and marks the synthesis accordingly.
type ScoreSynthesizer interface {
	Synthesize(ctx context.Context, sig *model.ChannelSignal) *scoring.Synthesis
}

// Hooks are optional metric callbacks. Zero-value fields are ignored.
type Hooks struct {
	CacheHit  func()
	CacheMiss func()
	Fallback  func()
}

func (h Hooks) hit() {
	if h.CacheHit != nil {
		h.CacheHit()
	}
}

func (h Hooks) miss() {
	if h.CacheMiss != nil {
		h.CacheMiss()
	}
}

func (h Hooks) fallback() {
	if h.Fallback != nil {
		h.Fallback()
	}
}

// InfluenceService owns the scoring lifecycle: hot cache in front, the
// Postgres store behind it, a full recompute when the stored result has
// aged past the freshness window, and stale results served as a last
// resort when a recompute fails.
type InfluenceService struct {
	store     InfluenceStore
	cache     *CacheService
	agg       SignalAggregator
	sentiment *analysis.Sentiment
	rules     *analysis.RuleSet
	synth     ScoreSynthesizer
	hooks     Hooks
	budget    time.Duration
	logger    zerolog.Logger

	now func() time.Time
}

// NewInfluenceService wires the scoring pipeline. budget caps one whole
// scoring pass end to end; zero or negative disables the cap.
func NewInfluenceService(
	store InfluenceStore,
	cache *CacheService,
	agg SignalAggregator,
	sentiment *analysis.Sentiment,
	rules *analysis.RuleSet,
	synth ScoreSynthesizer,
	hooks Hooks,
	budget time.Duration,
	logger zerolog.Logger,
) *InfluenceService {
	return &InfluenceService{
		store:     store,
		cache:     cache,
		agg:       agg,
		sentiment: sentiment,
		rules:     rules,
		synth:     synth,
		hooks:     hooks,
		budget:    budget,
		logger:    logger,
		now:       time.Now,
	}
}

// GetInfluence returns the influence score for an identifier (channel ID,
// URL or handle). Fresh stored results are served as-is; stale or missing
// ones trigger a full recompute. If the recompute fails and a stored
// result exists, the stale result is returned labeled as such.
func (s *InfluenceService) GetInfluence(ctx context.Context, identifier string) (*model.InfluenceResult, error) {
	channelID, err := s.agg.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if cached := s.cache.GetResult(ctx, channelID); cached != nil && cached.IsFresh(s.now()) {
		s.hooks.hit()
		cached.Freshness = model.FreshnessFresh
		return cached, nil
	}
	s.hooks.miss()

	stored, err := s.store.Get(ctx, channelID)
	if err != nil {
		s.logger.Error().Err(err).Str("channel_id", channelID).Msg("influence: store read failed")
		stored = nil
	}

	if stored != nil && stored.IsFresh(s.now()) {
		stored.Freshness = model.FreshnessFresh
		s.cache.SetResult(ctx, stored)
		return stored, nil
	}

	result, err := s.refresh(ctx, channelID)
	if err != nil {
		if stored != nil {
			s.logger.Warn().Err(err).Str("channel_id", channelID).
				Msg("influence: refresh failed, serving stale result")
			stored.Freshness = model.FreshnessStale
			return stored, nil
		}
		return nil, err
	}
	return result, nil
}

// RefreshInfluence forces a recompute regardless of freshness. The stale
// fallback policy matches GetInfluence.
func (s *InfluenceService) RefreshInfluence(ctx context.Context, identifier string) (*model.InfluenceResult, error) {
	channelID, err := s.agg.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	result, err := s.refresh(ctx, channelID)
	if err != nil {
		stored, storeErr := s.store.Get(ctx, channelID)
		if storeErr == nil && stored != nil {
			s.logger.Warn().Err(err).Str("channel_id", channelID).
				Msg("influence: forced refresh failed, serving stale result")
			stored.Freshness = model.FreshnessStale
			return stored, nil
		}
		return nil, err
	}
	return result, nil
}

// TopCreators lists the highest scored creators on record. Each result is
// labeled with its current freshness but never recomputed here.
func (s *InfluenceService) TopCreators(ctx context.Context, limit int) ([]model.InfluenceResult, error) {
	results, err := s.store.TopByScore(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range results {
		if results[i].IsFresh(now) {
			results[i].Freshness = model.FreshnessFresh
		} else {
			results[i].Freshness = model.FreshnessStale
		}
	}
	return results, nil
}

// refresh runs the full pipeline for one channel: gather signals, analyze
// the comment corpus, synthesize scores, persist and cache. A store write
// failure is logged but does not discard the computed result. The whole
// pass runs under the service budget so degraded sources cannot stack
// their individual timeouts past it.
func (s *InfluenceService) refresh(ctx context.Context, channelID string) (*model.InfluenceResult, error) {
	started := s.now()

	if s.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.budget)
		defer cancel()
	}

	sig, err := s.agg.Aggregate(ctx, channelID)
	if err != nil {
		return nil, err
	}

	sig.Sentiment = s.sentiment.Analyze(sig.Comments)
	sig.Terms = s.rules.Detect(sig.Comments)

	synthesis := s.synth.Synthesize(ctx, sig)
	if synthesis.Fallback {
		s.hooks.fallback()
	}

	result := &model.InfluenceResult{
		ChannelID:          sig.Channel.ID,
		ChannelTitle:       sig.Channel.Title,
		ChannelDescription: sig.Channel.Description,
		ChannelThumbnail:   sig.Channel.Thumbnail,
		SubscriberCount:    format.Count(sig.Channel.SubscriberCount),
		OverallScore:       synthesis.OverallScore,
		Metrics:            synthesis.Metrics,
		Analysis:           synthesis.Analysis,
		Recommendations:    synthesis.Recommendations,
		Fallback:           synthesis.Fallback,
		Freshness:          model.FreshnessFresh,
		UpdatedAt:          s.now(),
	}

	if err := s.store.Put(ctx, result); err != nil {
		s.logger.Error().Err(err).Str("channel_id", result.ChannelID).
			Msg("influence: store write failed, result not persisted")
	}
	s.cache.SetResult(ctx, result)

	s.logger.Info().
		Str("channel_id", result.ChannelID).
		Int("overall_score", result.OverallScore).
		Bool("fallback", result.Fallback).
		Int("comments", len(sig.Comments)).
		Dur("took", s.now().Sub(started)).
		Msg("influence: scored")

	return result, nil
}
