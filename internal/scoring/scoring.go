package scoring

import (
	"fmt"
	"math"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// Fixed metric weights. The overall score is always recomputed from these —
// an externally supplied overall is never trusted. The fallback scorer and
// the synthesizer's post-processing must agree on them exactly.
const (
	WeightSentiment       = 0.15
	WeightContentQuality  = 0.25
	WeightCredibility     = 0.25
	WeightRelevance       = 0.15
	WeightAppropriateness = 0.10
	WeightEngagement      = 0.10
)

// Synthesis is the outcome of one scoring pass, whether produced by the
// external generative call or by the deterministic fallback.
type Synthesis struct {
	OverallScore    int
	Metrics         model.MetricSet
	Analysis        string
	Recommendations []string
	Fallback        bool
}

// Normalize clamps a raw score into [0,100], rounding to the nearest
// integer. NaN collapses to the 50 midpoint.
func Normalize(score float64) int {
	if math.IsNaN(score) {
		return 50
	}
	n := int(math.Round(score))
	return min(max(n, 0), 100)
}

// Overall computes the weighted overall score from a metric set.
func Overall(m model.MetricSet) int {
	sum := float64(m.AudienceSentiment.Score)*WeightSentiment +
		float64(m.ContentQuality.Score)*WeightContentQuality +
		float64(m.Credibility.Score)*WeightCredibility +
		float64(m.Relevance.Score)*WeightRelevance +
		float64(m.Appropriateness.Score)*WeightAppropriateness +
		float64(m.Engagement.Score)*WeightEngagement
	return Normalize(sum)
}

// applyWikipediaPenalty enforces the mandatory −40 content-quality
// reduction when the creator has no encyclopedia presence, annotating the
// description with the before/after values. Applied after any external
// scoring and before the overall recomputation, regardless of whether the
// external service claims to have applied it already.
func applyWikipediaPenalty(m *model.MetricSet, hasWikipedia bool) {
	if hasWikipedia {
		return
	}
	original := m.ContentQuality.Score
	m.ContentQuality.Score = max(original-40, 0)
	m.ContentQuality.Description = describePenalty(original, m.ContentQuality.Score, m.ContentQuality.Description)
}

func describePenalty(before, after int, rest string) string {
	return fmt.Sprintf("Score reduced from %d to %d due to lack of Wikipedia page. %s", before, after, rest)
}
