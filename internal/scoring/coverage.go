package scoring

import (
	"math"
	"time"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// NewsCoverageScore rates news coverage 0–100 from article volume, recency
// and source diversity. Used to enrich the credibility explanation.
func NewsCoverageScore(articles []model.NewsArticle) int {
	if len(articles) == 0 {
		return 0
	}

	countScore := min(len(articles)*5, 50)

	cutoff := time.Now().AddDate(0, -1, 0)
	recent := 0
	for _, a := range articles {
		if !a.PublishedAt.Before(cutoff) {
			recent++
		}
	}
	recencyScore := int(math.Round(float64(recent) / float64(len(articles)) * 30))

	sources := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		sources[a.Source] = struct{}{}
	}
	diversityScore := min(len(sources)*4, 20)

	return min(countScore+recencyScore+diversityScore, 100)
}

// RedditEngagementScore rates social discussion 0–100 from post volume,
// log-scaled upvote/comment totals and subreddit diversity.
func RedditEngagementScore(posts []model.RedditPost) int {
	if len(posts) == 0 {
		return 0
	}

	postCountScore := math.Min(float64(len(posts))*1.5, 30)

	var upvotes, comments int
	for _, p := range posts {
		upvotes += p.Score
		comments += p.CommentCount
	}
	upvoteScore := math.Min(math.Log10(float64(upvotes)+1)*12, 30)
	commentScore := math.Min(math.Log10(float64(comments)+1)*12, 30)

	subreddits := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		subreddits[p.Subreddit] = struct{}{}
	}
	diversityScore := math.Min(float64(len(subreddits))*2.5, 20)

	return int(math.Min(postCountScore+upvoteScore+commentScore+diversityScore, 100))
}
