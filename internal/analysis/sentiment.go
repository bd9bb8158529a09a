package analysis

import (
	"math"
	"regexp"
	"strings"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// Lexicon-based sentiment over raw audience comments. Membership is a
// case-insensitive substring test; ties between the lexicons are broken by
// counting word-boundary occurrences of each side's terms.
var (
	positiveWords = []string{
		"good", "great", "awesome", "excellent", "amazing", "love", "best",
		"fantastic", "helpful", "informative", "interesting", "insightful",
		"useful", "brilliant", "perfect", "wonderful", "outstanding",
		"superb", "impressive", "thank", "thanks", "appreciate", "enjoyed",
		"enjoy", "like", "liked", "quality", "valuable",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "horrible", "poor", "worst", "waste",
		"boring", "useless", "disappointing", "disappointed", "dislike",
		"hate", "stupid", "wrong", "misleading", "clickbait", "annoying",
		"irritating", "garbage", "trash", "rubbish", "nonsense", "scam",
		"fake", "false", "error", "mistake", "problem", "issue",
	}

	positiveWordRes = compileWordPatterns(positiveWords)
	negativeWordRes = compileWordPatterns(negativeWords)
)

func compileWordPatterns(words []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return res
}

// Sentiment classifies comment corpora into positive/negative/neutral
// percentages and a 0–100 score.
type Sentiment struct {
	multiplier float64
}

// NewSentiment creates a classifier with the given sensitivity multiplier.
// Values <= 0 fall back to the 0.5 baseline.
func NewSentiment(multiplier float64) *Sentiment {
	if multiplier <= 0 {
		multiplier = 0.5
	}
	return &Sentiment{multiplier: multiplier}
}

// Analyze derives the sentiment profile for a comment corpus. An empty
// corpus yields the neutral baseline (score 50, all percentages zero).
func (s *Sentiment) Analyze(comments []string) model.SentimentProfile {
	if len(comments) == 0 {
		return model.SentimentProfile{Score: 50}
	}

	var positive, negative, neutral int
	for _, comment := range comments {
		switch classify(comment) {
		case 1:
			positive++
		case -1:
			negative++
		default:
			neutral++
		}
	}

	total := float64(len(comments))
	posPct := float64(positive) / total * 100
	negPct := float64(negative) / total * 100
	neuPct := float64(neutral) / total * 100

	score := int(math.Round(50 + (posPct-negPct)*s.multiplier))
	score = min(max(score, 0), 100)

	return model.SentimentProfile{
		Score:    score,
		Positive: posPct,
		Negative: negPct,
		Neutral:  neuPct,
	}
}

// classify returns 1 (positive), -1 (negative) or 0 (neutral) for one
// comment.
func classify(comment string) int {
	lower := strings.ToLower(comment)

	isPositive := containsAny(lower, positiveWords)
	isNegative := containsAny(lower, negativeWords)

	switch {
	case isPositive && !isNegative:
		return 1
	case isNegative && !isPositive:
		return -1
	case isPositive && isNegative:
		// Both lexicons hit: count word-boundary occurrences on each side
		// and let the larger total win. Exact tie stays neutral.
		pos := countMatches(lower, positiveWordRes)
		neg := countMatches(lower, negativeWordRes)
		if pos > neg {
			return 1
		}
		if neg > pos {
			return -1
		}
		return 0
	default:
		return 0
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func countMatches(s string, res []*regexp.Regexp) int {
	total := 0
	for _, re := range res {
		total += len(re.FindAllString(s, -1))
	}
	return total
}
