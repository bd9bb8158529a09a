package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sanks011/Influence-IQ/internal/model"
)

const (
	defaultRedditBaseURL = "https://www.reddit.com"
	redditMaxPosts       = 25
)

// Reddit searches public Reddit discussion threads mentioning the creator.
type Reddit struct {
	client  *http.Client
	baseURL string
}

func NewReddit(baseURL string, timeout time.Duration) *Reddit {
	if baseURL == "" {
		baseURL = defaultRedditBaseURL
	}
	return &Reddit{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Posts returns up to 25 discussion threads for the query, sorted by
// relevance.
func (r *Reddit) Posts(ctx context.Context, query string) ([]model.RedditPost, error) {
	params := url.Values{
		"q":     {strings.Join(strings.Fields(query), " ")},
		"sort":  {"relevance"},
		"t":     {"all"},
		"limit": {fmt.Sprint(redditMaxPosts)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: reddit request: %v", model.ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", "InfluenceIQ/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: reddit: %v", model.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: reddit", model.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: reddit status %d", model.ErrSourceUnavailable, resp.StatusCode)
	}

	var out struct {
		Data struct {
			Children []struct {
				Data struct {
					Title       string `json:"title"`
					Subreddit   string `json:"subreddit"`
					Score       int    `json:"score"`
					NumComments int    `json:"num_comments"`
					Permalink   string `json:"permalink"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: reddit decode: %v", model.ErrSourceUnavailable, err)
	}

	posts := make([]model.RedditPost, 0, len(out.Data.Children))
	for _, child := range out.Data.Children {
		posts = append(posts, model.RedditPost{
			Title:        child.Data.Title,
			Subreddit:    "r/" + child.Data.Subreddit,
			Score:        child.Data.Score,
			CommentCount: child.Data.NumComments,
			URL:          "https://reddit.com" + child.Data.Permalink,
		})
	}
	return posts, nil
}
