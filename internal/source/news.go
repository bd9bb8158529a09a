package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/sanks011/Influence-IQ/internal/model"
)

const newsMaxArticles = 10

// News searches a Google News style RSS feed for mentions of the creator.
type News struct {
	client  *http.Client
	parser  *gofeed.Parser
	feedURL string
}

// NewNews creates a news source against the given search-feed base URL
// (e.g. https://news.google.com/rss/search).
func NewNews(feedURL string, timeout time.Duration) *News {
	return &News{
		client:  &http.Client{Timeout: timeout},
		parser:  gofeed.NewParser(),
		feedURL: feedURL,
	}
}

// Articles returns up to 10 news mentions for the query.
func (n *News) Articles(ctx context.Context, query string) ([]model.NewsArticle, error) {
	q := url.Values{"q": {strings.Join(strings.Fields(query), " ")}, "hl": {"en-US"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.feedURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: news request: %v", model.ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", "InfluenceIQ/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: news: %v", model.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: news feed", model.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: news status %d", model.ErrSourceUnavailable, resp.StatusCode)
	}

	feed, err := n.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: news parse: %v", model.ErrSourceUnavailable, err)
	}

	articles := make([]model.NewsArticle, 0, min(len(feed.Items), newsMaxArticles))
	for _, item := range feed.Items {
		if len(articles) == newsMaxArticles {
			break
		}

		published := time.Time{}
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		title, src := splitSourceSuffix(item.Title)
		articles = append(articles, model.NewsArticle{
			Title:       title,
			Source:      src,
			URL:         item.Link,
			PublishedAt: published,
		})
	}
	return articles, nil
}

// splitSourceSuffix splits the "Headline - Outlet" convention Google News
// feeds use for item titles. No suffix leaves the source empty.
func splitSourceSuffix(title string) (string, string) {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return title[:idx], title[idx+3:]
	}
	return title, ""
}
