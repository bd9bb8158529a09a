package model

import "time"

// WikipediaQuality tiers a creator's encyclopedia presence.
type WikipediaQuality string

const (
	WikipediaQualityHigh   WikipediaQuality = "high"
	WikipediaQualityMedium WikipediaQuality = "medium"
	WikipediaQualityLow    WikipediaQuality = "low"
)

// ChannelInfo is the channel metadata returned by the YouTube collaborator.
type ChannelInfo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Thumbnail       string `json:"thumbnail"`
	SubscriberCount int64  `json:"subscriberCount"`
	VideoCount      int64  `json:"videoCount"`
	ViewCount       int64  `json:"viewCount"`
}

// WikipediaInfo describes a creator's encyclopedia presence.
type WikipediaInfo struct {
	Exists  bool             `json:"exists"`
	Title   string           `json:"title,omitempty"`
	Quality WikipediaQuality `json:"quality,omitempty"`
}

// NewsArticle is a single news mention of the creator.
type NewsArticle struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// RedditPost is a single social-discussion thread about the creator.
type RedditPost struct {
	Title        string `json:"title"`
	Subreddit    string `json:"subreddit"`
	Score        int    `json:"score"`
	CommentCount int    `json:"commentCount"`
	URL          string `json:"url"`
}

// ChannelSignal is the unified input record for one scoring pass. It is
// assembled once by the aggregator and never mutated afterwards.
type ChannelSignal struct {
	Channel      ChannelInfo
	Comments     []string
	Wikipedia    WikipediaInfo
	NewsArticles []NewsArticle
	RedditPosts  []RedditPost
	Sentiment    SentimentProfile
	Terms        TermDetection
}

// SentimentProfile holds the comment-corpus sentiment breakdown.
// Percentages sum to 100 (within rounding) for a non-empty corpus.
type SentimentProfile struct {
	Score    int     `json:"score"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// TermTier is a watch-list severity tier.
type TermTier string

const (
	TierSevere   TermTier = "severe"
	TierModerate TermTier = "moderate"
	TierMild     TermTier = "mild"
)

// TermDetection carries per-tier watch-list counts, the de-duplicated
// lowercased matched terms, and the educational-term count used as a
// quality-boosting signal.
type TermDetection struct {
	Counts           map[TermTier]int      `json:"counts"`
	Detected         map[TermTier][]string `json:"detected"`
	EducationalTerms int                   `json:"educationalTerms"`
}

// Total returns the combined watch-list term count across all tiers.
func (t TermDetection) Total() int {
	return t.Counts[TierSevere] + t.Counts[TierModerate] + t.Counts[TierMild]
}
