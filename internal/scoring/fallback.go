package scoring

import (
	"fmt"
	"strings"

	"github.com/sanks011/Influence-IQ/internal/config"
	"github.com/sanks011/Influence-IQ/internal/model"
)

// Per-occurrence watch-list penalties and their per-tier caps.
const (
	severePenalty   = 40
	moderatePenalty = 15
	mildPenalty     = 10

	severePenaltyCap   = 45
	moderatePenaltyCap = 30
	mildPenaltyCap     = 15

	appropriatenessFloor = 10
)

// FallbackScorer produces the full metric set deterministically from the
// aggregated signal — no network I/O. It runs whenever the external
// synthesis call is unavailable or unparsable, and must keep the same
// metric shape and weighting as the synthesizer.
type FallbackScorer struct {
	cfg config.ScoringConfig
}

func NewFallbackScorer(cfg config.ScoringConfig) *FallbackScorer {
	return &FallbackScorer{cfg: cfg}
}

// Score derives all six metrics from the channel signal.
func (f *FallbackScorer) Score(sig *model.ChannelSignal) *Synthesis {
	edu := sig.Terms.EducationalTerms
	totalTerms := sig.Terms.Total()
	hasWiki := sig.Wikipedia.Exists

	quality := Normalize(float64(f.cfg.QualityBase) + float64(min(edu*2, 30)))

	appropriateness := f.cfg.AppropriatenessBase
	if totalTerms > 0 {
		penalty := min(sig.Terms.Counts[model.TierSevere]*severePenalty, severePenaltyCap) +
			min(sig.Terms.Counts[model.TierModerate]*moderatePenalty, moderatePenaltyCap) +
			min(sig.Terms.Counts[model.TierMild]*mildPenalty, mildPenaltyCap)
		appropriateness = max(appropriateness-penalty, appropriatenessFloor)
	}

	credibility := 35
	if hasWiki {
		credibility = 65
	}
	credibility += min(len(sig.NewsArticles), 10)

	engagement := 60 + min(len(sig.RedditPosts)*2, 30)
	relevance := 50 + min(edu, 40)

	metrics := model.MetricSet{
		AudienceSentiment: model.MetricScore{
			Score:       Normalize(float64(sig.Sentiment.Score)),
			Description: fmt.Sprintf("Audience sentiment shows %.1f%% positive engagement.", sig.Sentiment.Positive),
		},
		ContentQuality: model.MetricScore{
			Score:       quality,
			Description: fmt.Sprintf("%s with %d educational mentions.", wikiQualityNote(hasWiki), edu),
		},
		Credibility: model.MetricScore{
			Score:       Normalize(float64(credibility)),
			Description: fmt.Sprintf("Based on %s and %d news mentions (coverage score %d).", wikiCredibilityNote(hasWiki), len(sig.NewsArticles), NewsCoverageScore(sig.NewsArticles)),
		},
		Relevance: model.MetricScore{
			Score:       Normalize(float64(relevance)),
			Description: fmt.Sprintf("Relevance based on educational terms (%d) and overall impact.", edu),
		},
		Appropriateness: model.MetricScore{
			Score:         Normalize(float64(appropriateness)),
			Description:   appropriatenessNote(sig.Terms),
			DetectedTerms: sig.Terms.Detected,
		},
		Engagement: model.MetricScore{
			Score:       Normalize(float64(engagement)),
			Description: fmt.Sprintf("Engagement from %d Reddit posts (engagement score %d) and comment patterns.", len(sig.RedditPosts), RedditEngagementScore(sig.RedditPosts)),
		},
	}

	applyWikipediaPenalty(&metrics, hasWiki)
	overall := Overall(metrics)

	return &Synthesis{
		OverallScore:    overall,
		Metrics:         metrics,
		Analysis:        fallbackAnalysis(sig, overall, edu, totalTerms),
		Recommendations: fallbackRecommendations(hasWiki, edu, totalTerms),
		Fallback:        true,
	}
}

func wikiQualityNote(hasWiki bool) string {
	if hasWiki {
		return "Wikipedia presence indicates notable content"
	}
	return "Lack of Wikipedia presence"
}

func wikiCredibilityNote(hasWiki bool) string {
	if hasWiki {
		return "Wikipedia presence"
	}
	return "absence of Wikipedia"
}

func appropriatenessNote(terms model.TermDetection) string {
	total := terms.Total()
	if total == 0 {
		return "Content appropriateness shows no concerning mentions."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Content appropriateness shows concerns (%d severe, %d moderate, %d mild issues).",
		terms.Counts[model.TierSevere], terms.Counts[model.TierModerate], terms.Counts[model.TierMild])
	for _, tier := range []model.TermTier{model.TierSevere, model.TierModerate, model.TierMild} {
		if len(terms.Detected[tier]) > 0 {
			fmt.Fprintf(&b, " %s terms detected: [%s].", titleTier(tier), strings.Join(terms.Detected[tier], ", "))
		}
	}
	return b.String()
}

func titleTier(tier model.TermTier) string {
	s := string(tier)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func fallbackAnalysis(sig *model.ChannelSignal, overall, edu, totalTerms int) string {
	strength := "limited"
	switch {
	case overall >= 80:
		strength = "strong"
	case overall >= 60:
		strength = "moderate"
	}

	wikiNote := "Lack of Wikipedia impacts content quality assessment"
	if sig.Wikipedia.Exists {
		wikiNote = "Wikipedia presence boosts credibility"
	}

	termNote := "no issues"
	if totalTerms > 0 {
		termNote = fmt.Sprintf("%d concerns", totalTerms)
	}

	return fmt.Sprintf("%s shows %s influence. %s. Educational value (%d mentions) and content appropriateness (%s) are key factors.",
		sig.Channel.Title, strength, wikiNote, edu, termNote)
}

func fallbackRecommendations(hasWiki bool, edu, totalTerms int) []string {
	recs := make([]string, 0, 4)

	if hasWiki {
		recs = append(recs, "Continue building on established credibility")
	} else {
		recs = append(recs, "Work toward Wikipedia inclusion through notable content")
	}

	if edu > 10 {
		recs = append(recs, "Expand educational focus for increased relevance")
	} else {
		recs = append(recs, "Increase educational content for better quality scores")
	}

	if totalTerms > 0 {
		recs = append(recs, "Address content appropriateness for improved scores")
	} else {
		recs = append(recs, "Maintain high content standards while expanding reach")
	}

	recs = append(recs, "Develop more engagement through Reddit and other platforms")
	return recs
}
