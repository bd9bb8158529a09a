package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sanks011/Influence-IQ/internal/analysis"
	"github.com/sanks011/Influence-IQ/internal/model"
	"github.com/sanks011/Influence-IQ/internal/scoring"
)

const testChannelID = "UCtest0000000000000000aa"

type fakeStore struct {
	results map[string]*model.InfluenceResult
	getErr  error
	putErr  error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{results: make(map[string]*model.InfluenceResult)}
}

func (s *fakeStore) Get(ctx context.Context, channelID string) (*model.InfluenceResult, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	r, ok := s.results[channelID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) Put(ctx context.Context, result *model.InfluenceResult) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	cp := *result
	s.results[result.ChannelID] = &cp
	return nil
}

func (s *fakeStore) TopByScore(ctx context.Context, limit int) ([]model.InfluenceResult, error) {
	out := make([]model.InfluenceResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, *r)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAgg struct {
	aggregateErr   error
	aggregateCalls int
	sawDeadline    bool
}

func (a *fakeAgg) Resolve(ctx context.Context, identifier string) (string, error) {
	return testChannelID, nil
}

func (a *fakeAgg) Aggregate(ctx context.Context, identifier string) (*model.ChannelSignal, error) {
	a.aggregateCalls++
	_, a.sawDeadline = ctx.Deadline()
	if a.aggregateErr != nil {
		return nil, a.aggregateErr
	}
	return &model.ChannelSignal{
		Channel: model.ChannelInfo{
			ID:              testChannelID,
			Title:           "Test Channel",
			SubscriberCount: 1_234_567,
		},
		Comments:     []string{"great video", "terrible audio"},
		Wikipedia:    model.WikipediaInfo{Exists: true},
		NewsArticles: []model.NewsArticle{},
		RedditPosts:  []model.RedditPost{},
	}, nil
}

type fakeSynth struct {
	fallback bool
	calls    int
	lastSig  *model.ChannelSignal
}

func (f *fakeSynth) Synthesize(ctx context.Context, sig *model.ChannelSignal) *scoring.Synthesis {
	f.calls++
	f.lastSig = sig
	return &scoring.Synthesis{
		OverallScore: 72,
		Metrics: model.MetricSet{
			ContentQuality: model.MetricScore{Score: 80},
		},
		Analysis:        "fine",
		Recommendations: []string{"keep going"},
		Fallback:        f.fallback,
	}
}

type testHarness struct {
	svc   *InfluenceService
	store *fakeStore
	agg   *fakeAgg
	synth *fakeSynth
	now   time.Time
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		store: newFakeStore(),
		agg:   &fakeAgg{},
		synth: &fakeSynth{},
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	h.svc = NewInfluenceService(
		h.store,
		NewCacheService("", zerolog.Nop()),
		h.agg,
		analysis.NewSentiment(0.5),
		analysis.DefaultRules(),
		h.synth,
		Hooks{},
		15*time.Second,
		zerolog.Nop(),
	)
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *testHarness) seed(updatedAt time.Time) {
	h.store.results[testChannelID] = &model.InfluenceResult{
		ChannelID:    testChannelID,
		ChannelTitle: "Stored Channel",
		OverallScore: 55,
		UpdatedAt:    updatedAt,
	}
}

func TestGetInfluence_FreshStoredResultServed(t *testing.T) {
	h := newHarness(t)
	h.seed(h.now.Add(-1 * time.Hour))

	got, err := h.svc.GetInfluence(context.Background(), testChannelID)
	if err != nil {
		t.Fatal(err)
	}

	if got.ChannelTitle != "Stored Channel" {
		t.Errorf("served %q, want stored result", got.ChannelTitle)
	}
	if got.Freshness != model.FreshnessFresh {
		t.Errorf("freshness = %q, want fresh", got.Freshness)
	}
	if h.agg.aggregateCalls != 0 {
		t.Errorf("fresh result should not trigger aggregation, got %d calls", h.agg.aggregateCalls)
	}
}

func TestGetInfluence_FreshnessBoundary(t *testing.T) {
	t.Run("one second inside window is fresh", func(t *testing.T) {
		h := newHarness(t)
		h.seed(h.now.Add(-model.FreshnessWindow + time.Second))

		got, err := h.svc.GetInfluence(context.Background(), testChannelID)
		if err != nil {
			t.Fatal(err)
		}
		if h.agg.aggregateCalls != 0 {
			t.Error("result inside the window should not be recomputed")
		}
		if got.Freshness != model.FreshnessFresh {
			t.Errorf("freshness = %q, want fresh", got.Freshness)
		}
	})

	t.Run("exactly at window is stale", func(t *testing.T) {
		h := newHarness(t)
		h.seed(h.now.Add(-model.FreshnessWindow))

		_, err := h.svc.GetInfluence(context.Background(), testChannelID)
		if err != nil {
			t.Fatal(err)
		}
		if h.agg.aggregateCalls != 1 {
			t.Errorf("result at exactly the window boundary should be recomputed, got %d calls", h.agg.aggregateCalls)
		}
	})
}

func TestGetInfluence_MissingResultComputed(t *testing.T) {
	h := newHarness(t)

	got, err := h.svc.GetInfluence(context.Background(), "@somechannel")
	if err != nil {
		t.Fatal(err)
	}

	if got.ChannelID != testChannelID {
		t.Errorf("channel id = %q", got.ChannelID)
	}
	if got.SubscriberCount != "1.2M" {
		t.Errorf("subscriber count = %q, want formatted 1.2M", got.SubscriberCount)
	}
	if got.UpdatedAt != h.now {
		t.Errorf("updatedAt = %v, want injected now", got.UpdatedAt)
	}
	if h.store.puts != 1 {
		t.Errorf("store puts = %d, want 1", h.store.puts)
	}
}

func TestGetInfluence_SignalEnrichedBeforeSynthesis(t *testing.T) {
	h := newHarness(t)

	if _, err := h.svc.GetInfluence(context.Background(), testChannelID); err != nil {
		t.Fatal(err)
	}

	sig := h.synth.lastSig
	if sig == nil {
		t.Fatal("synthesizer never called")
	}
	if sig.Sentiment.Score == 0 && sig.Sentiment.Positive == 0 && sig.Sentiment.Neutral == 0 {
		t.Error("sentiment not attached to signal")
	}
	if sig.Terms.Counts == nil {
		t.Error("term detection not attached to signal")
	}
}

func TestGetInfluence_StaleServedWhenRefreshFails(t *testing.T) {
	h := newHarness(t)
	h.seed(h.now.Add(-48 * time.Hour))
	h.agg.aggregateErr = model.ErrSourceUnavailable

	got, err := h.svc.GetInfluence(context.Background(), testChannelID)
	if err != nil {
		t.Fatalf("stale result should be served on refresh failure, got error %v", err)
	}

	if got.ChannelTitle != "Stored Channel" {
		t.Errorf("served %q, want stored stale result", got.ChannelTitle)
	}
	if got.Freshness != model.FreshnessStale {
		t.Errorf("freshness = %q, want stale", got.Freshness)
	}
}

func TestGetInfluence_ErrorWhenNoStoredResult(t *testing.T) {
	h := newHarness(t)
	h.agg.aggregateErr = model.ErrIdentityNotFound

	_, err := h.svc.GetInfluence(context.Background(), "@missing")
	if !errors.Is(err, model.ErrIdentityNotFound) {
		t.Fatalf("err = %v, want ErrIdentityNotFound", err)
	}
}

func TestGetInfluence_StoreWriteFailureStillReturnsResult(t *testing.T) {
	h := newHarness(t)
	h.store.putErr = errors.New("disk full")

	got, err := h.svc.GetInfluence(context.Background(), testChannelID)
	if err != nil {
		t.Fatalf("persist failure must not discard the result: %v", err)
	}
	if got.OverallScore != 72 {
		t.Errorf("overall = %d, want computed 72", got.OverallScore)
	}
}

func TestRefreshInfluence_BypassesFreshness(t *testing.T) {
	h := newHarness(t)
	h.seed(h.now.Add(-1 * time.Hour))

	got, err := h.svc.RefreshInfluence(context.Background(), testChannelID)
	if err != nil {
		t.Fatal(err)
	}

	if h.agg.aggregateCalls != 1 {
		t.Errorf("forced refresh should recompute, got %d aggregate calls", h.agg.aggregateCalls)
	}
	if got.ChannelTitle != "Test Channel" {
		t.Errorf("served %q, want recomputed result", got.ChannelTitle)
	}
}

func TestTopCreators_LabelsFreshness(t *testing.T) {
	h := newHarness(t)
	h.store.results["UCfresh000000000000000aa"] = &model.InfluenceResult{
		ChannelID: "UCfresh000000000000000aa",
		UpdatedAt: h.now.Add(-1 * time.Hour),
	}
	h.store.results["UCstale000000000000000aa"] = &model.InfluenceResult{
		ChannelID: "UCstale000000000000000aa",
		UpdatedAt: h.now.Add(-48 * time.Hour),
	}

	results, err := h.svc.TopCreators(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	byID := map[string]model.Freshness{}
	for _, r := range results {
		byID[r.ChannelID] = r.Freshness
	}
	if byID["UCfresh000000000000000aa"] != model.FreshnessFresh {
		t.Error("recent result should be labeled fresh")
	}
	if byID["UCstale000000000000000aa"] != model.FreshnessStale {
		t.Error("aged result should be labeled stale")
	}
	if h.agg.aggregateCalls != 0 {
		t.Error("listing must not trigger recomputes")
	}
}

func TestRefresh_RunsUnderPipelineBudget(t *testing.T) {
	t.Run("budget set puts a deadline on the pass", func(t *testing.T) {
		h := newHarness(t)

		if _, err := h.svc.RefreshInfluence(context.Background(), testChannelID); err != nil {
			t.Fatal(err)
		}
		if !h.agg.sawDeadline {
			t.Error("aggregation context should carry the pipeline deadline")
		}
	})

	t.Run("zero budget leaves the context unbounded", func(t *testing.T) {
		h := newHarness(t)
		h.svc.budget = 0

		if _, err := h.svc.RefreshInfluence(context.Background(), testChannelID); err != nil {
			t.Fatal(err)
		}
		if h.agg.sawDeadline {
			t.Error("no deadline expected when the budget is disabled")
		}
	})
}

func TestGetInfluence_FallbackHookFires(t *testing.T) {
	h := newHarness(t)
	h.synth.fallback = true

	fallbacks := 0
	h.svc.hooks = Hooks{Fallback: func() { fallbacks++ }}

	got, err := h.svc.GetInfluence(context.Background(), testChannelID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Fallback {
		t.Error("fallback flag should propagate to the result")
	}
	if fallbacks != 1 {
		t.Errorf("fallback hook fired %d times, want 1", fallbacks)
	}
}
