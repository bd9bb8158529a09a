package model

import "time"

// Metric names. The set is fixed: every InfluenceResult carries exactly
// these six.
const (
	MetricAudienceSentiment = "audienceSentiment"
	MetricContentQuality    = "contentQuality"
	MetricCredibility       = "credibility"
	MetricRelevance         = "relevance"
	MetricAppropriateness   = "appropriateness"
	MetricEngagement        = "engagement"
)

// MetricScore is a single named score with a human-readable explanation.
// Appropriateness additionally carries the detected watch-list terms for
// transparency.
type MetricScore struct {
	Score         int                   `json:"score"`
	Description   string                `json:"description"`
	DetectedTerms map[TermTier][]string `json:"detectedTerms,omitempty"`
}

// MetricSet is the six-metric shape shared by the fallback scorer and the
// external synthesis call.
type MetricSet struct {
	AudienceSentiment MetricScore `json:"audienceSentiment"`
	ContentQuality    MetricScore `json:"contentQuality"`
	Credibility       MetricScore `json:"credibility"`
	Relevance         MetricScore `json:"relevance"`
	Appropriateness   MetricScore `json:"appropriateness"`
	Engagement        MetricScore `json:"engagement"`
}

// Freshness labels whether a result is inside the 24h freshness window.
type Freshness string

const (
	FreshnessFresh Freshness = "fresh"
	FreshnessStale Freshness = "stale"
)

// FreshnessWindow is how long a stored result is considered fresh.
// Exactly FreshnessWindow old is stale.
const FreshnessWindow = 24 * time.Hour

// InfluenceResult is the persisted unit of one scoring pass. It is
// immutable after creation; a refresh produces a new result.
type InfluenceResult struct {
	ChannelID          string    `json:"channelId"`
	ChannelTitle       string    `json:"channelTitle"`
	ChannelDescription string    `json:"channelDescription"`
	ChannelThumbnail   string    `json:"channelThumbnail"`
	SubscriberCount    string    `json:"subscriberCount"`
	OverallScore       int       `json:"overallScore"`
	Metrics            MetricSet `json:"metrics"`
	Analysis           string    `json:"analysis"`
	Recommendations    []string  `json:"recommendations"`
	Fallback           bool      `json:"fallback,omitempty"`
	Freshness          Freshness `json:"freshness,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// IsFresh reports whether the result is inside the freshness window at the
// given instant. The boundary itself counts as stale.
func (r *InfluenceResult) IsFresh(now time.Time) bool {
	return now.Sub(r.UpdatedAt) < FreshnessWindow
}
