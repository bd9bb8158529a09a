package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/sanks011/Influence-IQ/internal/config"
	"github.com/sanks011/Influence-IQ/internal/model"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		SentimentMultiplier: 0.5,
		QualityBase:         70,
		AppropriatenessBase: 70,
		SynthesisTimeout:    time.Second,
		SourceTimeout:       time.Second,
	}
}

func baseSignal() *model.ChannelSignal {
	return &model.ChannelSignal{
		Channel: model.ChannelInfo{
			ID:    "UCuAXFkgsw1L7xaCfnd5JJOw",
			Title: "Test Channel",
		},
		Sentiment: model.SentimentProfile{Score: 50},
		Terms: model.TermDetection{
			Counts:   map[model.TermTier]int{},
			Detected: map[model.TermTier][]string{},
		},
	}
}

func TestFallback_NoWikipediaQualityPenalty(t *testing.T) {
	sig := baseSignal()
	sig.Terms.EducationalTerms = 10
	sig.Wikipedia.Exists = false

	syn := NewFallbackScorer(testScoringConfig()).Score(sig)

	// base 70 + min(10*2, 30) = 90, then -40 for no Wikipedia.
	if got := syn.Metrics.ContentQuality.Score; got != 50 {
		t.Errorf("content quality = %d, want 50", got)
	}
	if !strings.Contains(syn.Metrics.ContentQuality.Description, "reduced from 90 to 50") {
		t.Errorf("quality description missing penalty annotation: %q", syn.Metrics.ContentQuality.Description)
	}
	if !syn.Fallback {
		t.Error("fallback flag should be set")
	}
}

func TestFallback_WithWikipediaNoPenalty(t *testing.T) {
	sig := baseSignal()
	sig.Terms.EducationalTerms = 10
	sig.Wikipedia.Exists = true

	syn := NewFallbackScorer(testScoringConfig()).Score(sig)

	if got := syn.Metrics.ContentQuality.Score; got != 90 {
		t.Errorf("content quality = %d, want 90", got)
	}
}

func TestFallback_AppropriatenessPenalties(t *testing.T) {
	sig := baseSignal()
	sig.Terms.Counts[model.TierSevere] = 1
	sig.Terms.Counts[model.TierModerate] = 1

	syn := NewFallbackScorer(testScoringConfig()).Score(sig)

	// 70 - (40 + 15) = 15
	if got := syn.Metrics.Appropriateness.Score; got != 15 {
		t.Errorf("appropriateness = %d, want 15", got)
	}
	if got := syn.Metrics.Appropriateness.Score; got > 30 {
		t.Errorf("severe+moderate content should score at most 30, got %d", got)
	}
}

func TestFallback_AppropriatenessFloor(t *testing.T) {
	sig := baseSignal()
	sig.Terms.Counts[model.TierSevere] = 5
	sig.Terms.Counts[model.TierModerate] = 5
	sig.Terms.Counts[model.TierMild] = 5

	syn := NewFallbackScorer(testScoringConfig()).Score(sig)

	// Per-tier caps 45+30+15 would take 70 to -20; floor holds at 10.
	if got := syn.Metrics.Appropriateness.Score; got != 10 {
		t.Errorf("appropriateness = %d, want floor 10", got)
	}
}

func TestFallback_CleanCorpusKeepsBase(t *testing.T) {
	sig := baseSignal()

	syn := NewFallbackScorer(testScoringConfig()).Score(sig)

	if got := syn.Metrics.Appropriateness.Score; got != 70 {
		t.Errorf("appropriateness = %d, want base 70", got)
	}
	if !strings.Contains(syn.Metrics.Appropriateness.Description, "no concerning mentions") {
		t.Errorf("unexpected description: %q", syn.Metrics.Appropriateness.Description)
	}
}

func TestFallback_CredibilityAndEngagement(t *testing.T) {
	sig := baseSignal()
	sig.Wikipedia.Exists = true
	sig.NewsArticles = make([]model.NewsArticle, 12)
	sig.RedditPosts = make([]model.RedditPost, 20)
	sig.Terms.EducationalTerms = 50

	syn := NewFallbackScorer(testScoringConfig()).Score(sig)

	// 65 + min(12, 10)
	if got := syn.Metrics.Credibility.Score; got != 75 {
		t.Errorf("credibility = %d, want 75", got)
	}
	// 60 + min(20*2, 30)
	if got := syn.Metrics.Engagement.Score; got != 90 {
		t.Errorf("engagement = %d, want 90", got)
	}
	// 50 + min(50, 40)
	if got := syn.Metrics.Relevance.Score; got != 90 {
		t.Errorf("relevance = %d, want 90", got)
	}
}

func TestFallback_OverallMatchesWeights(t *testing.T) {
	sig := baseSignal()
	sig.Wikipedia.Exists = true
	sig.Terms.EducationalTerms = 5

	syn := NewFallbackScorer(testScoringConfig()).Score(sig)

	if got, want := syn.OverallScore, Overall(syn.Metrics); got != want {
		t.Errorf("overall = %d, want weighted %d", got, want)
	}
}

func TestFallback_AllMetricsInRange(t *testing.T) {
	signals := []*model.ChannelSignal{
		baseSignal(),
		func() *model.ChannelSignal {
			sig := baseSignal()
			sig.Terms.Counts[model.TierSevere] = 100
			sig.Terms.Counts[model.TierModerate] = 100
			sig.Terms.Counts[model.TierMild] = 100
			sig.Terms.EducationalTerms = 1000
			sig.NewsArticles = make([]model.NewsArticle, 100)
			sig.RedditPosts = make([]model.RedditPost, 100)
			sig.Sentiment.Score = 100
			return sig
		}(),
		func() *model.ChannelSignal {
			sig := baseSignal()
			sig.Sentiment.Score = 0
			return sig
		}(),
	}

	scorer := NewFallbackScorer(testScoringConfig())
	for i, sig := range signals {
		syn := scorer.Score(sig)
		for name, score := range map[string]int{
			"overall":         syn.OverallScore,
			"sentiment":       syn.Metrics.AudienceSentiment.Score,
			"quality":         syn.Metrics.ContentQuality.Score,
			"credibility":     syn.Metrics.Credibility.Score,
			"relevance":       syn.Metrics.Relevance.Score,
			"appropriateness": syn.Metrics.Appropriateness.Score,
			"engagement":      syn.Metrics.Engagement.Score,
		} {
			if score < 0 || score > 100 {
				t.Errorf("signal %d: %s = %d, out of [0,100]", i, name, score)
			}
		}
	}
}

func TestFallback_RecommendationsReflectSignal(t *testing.T) {
	sig := baseSignal()
	sig.Wikipedia.Exists = false

	syn := NewFallbackScorer(testScoringConfig()).Score(sig)

	if len(syn.Recommendations) != 4 {
		t.Fatalf("got %d recommendations, want 4", len(syn.Recommendations))
	}
	if !strings.Contains(syn.Recommendations[0], "Wikipedia") {
		t.Errorf("first recommendation should mention Wikipedia: %q", syn.Recommendations[0])
	}
}
