package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/sanks011/Influence-IQ/internal/model"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

var (
	channelIDRe  = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
	videoURLRe   = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^/?&#]+)`)
	channelURLRe = regexp.MustCompile(`youtube\.com/channel/([^/?#]+)`)
	handleURLRe  = regexp.MustCompile(`youtube\.com/@([^/?#]+)`)
	customURLRe  = regexp.MustCompile(`youtube\.com/(?:c|user)/([^/?#]+)`)
)

// YouTube fetches channel metadata, recent video IDs and comment threads
// from the YouTube Data API.
type YouTube struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewYouTube creates a YouTube client. An empty baseURL uses the public
// API endpoint.
func NewYouTube(apiKey, baseURL string, timeout time.Duration) *YouTube {
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	return &YouTube{
		client:  &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// ResolveChannelID resolves any supported identifier form — a raw channel
// ID, a /channel/ URL, a video URL, an @handle URL, a /c/ or /user/ URL,
// or a bare channel name — to the canonical channel ID.
func (y *YouTube) ResolveChannelID(ctx context.Context, query string) (string, error) {
	if channelIDRe.MatchString(query) {
		return query, nil
	}
	if m := channelURLRe.FindStringSubmatch(query); m != nil {
		return m[1], nil
	}

	if m := videoURLRe.FindStringSubmatch(query); m != nil {
		return y.channelIDFromVideo(ctx, m[1])
	}

	name := query
	if m := handleURLRe.FindStringSubmatch(query); m != nil {
		name = m[1]
	} else if m := customURLRe.FindStringSubmatch(query); m != nil {
		name = m[1]
	}
	return y.searchChannelID(ctx, name)
}

func (y *YouTube) channelIDFromVideo(ctx context.Context, videoID string) (string, error) {
	var out struct {
		Items []struct {
			Snippet struct {
				ChannelID string `json:"channelId"`
			} `json:"snippet"`
		} `json:"items"`
	}
	params := url.Values{"part": {"snippet"}, "id": {videoID}}
	if err := y.get(ctx, "/videos", params, &out); err != nil {
		return "", err
	}
	if len(out.Items) == 0 {
		return "", fmt.Errorf("%w: video %s", model.ErrIdentityNotFound, videoID)
	}
	return out.Items[0].Snippet.ChannelID, nil
}

func (y *YouTube) searchChannelID(ctx context.Context, name string) (string, error) {
	var out struct {
		Items []struct {
			Snippet struct {
				ChannelID string `json:"channelId"`
			} `json:"snippet"`
		} `json:"items"`
	}
	params := url.Values{"part": {"snippet"}, "q": {name}, "type": {"channel"}, "maxResults": {"1"}}
	if err := y.get(ctx, "/search", params, &out); err != nil {
		return "", err
	}
	if len(out.Items) == 0 || out.Items[0].Snippet.ChannelID == "" {
		return "", fmt.Errorf("%w: %q", model.ErrIdentityNotFound, name)
	}
	return out.Items[0].Snippet.ChannelID, nil
}

// Channel fetches snippet and statistics for a channel ID.
func (y *YouTube) Channel(ctx context.Context, channelID string) (*model.ChannelInfo, error) {
	var out struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				Thumbnails  struct {
					High struct {
						URL string `json:"url"`
					} `json:"high"`
				} `json:"thumbnails"`
			} `json:"snippet"`
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
				VideoCount      string `json:"videoCount"`
				ViewCount       string `json:"viewCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	params := url.Values{"part": {"snippet,statistics"}, "id": {channelID}}
	if err := y.get(ctx, "/channels", params, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("%w: channel %s", model.ErrIdentityNotFound, channelID)
	}

	item := out.Items[0]
	return &model.ChannelInfo{
		ID:              item.ID,
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		Thumbnail:       item.Snippet.Thumbnails.High.URL,
		SubscriberCount: parseCount(item.Statistics.SubscriberCount),
		VideoCount:      parseCount(item.Statistics.VideoCount),
		ViewCount:       parseCount(item.Statistics.ViewCount),
	}, nil
}

// RecentVideoIDs returns up to max of the channel's most recent video IDs.
func (y *YouTube) RecentVideoIDs(ctx context.Context, channelID string, max int) ([]string, error) {
	var out struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	params := url.Values{
		"part": {"snippet"}, "channelId": {channelID},
		"maxResults": {strconv.Itoa(max)}, "order": {"date"}, "type": {"video"},
	}
	if err := y.get(ctx, "/search", params, &out); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

// Comments returns up to max top-level comment texts for a video.
func (y *YouTube) Comments(ctx context.Context, videoID string, max int) ([]string, error) {
	var out struct {
		Items []struct {
			Snippet struct {
				TopLevelComment struct {
					Snippet struct {
						TextDisplay string `json:"textDisplay"`
					} `json:"snippet"`
				} `json:"topLevelComment"`
			} `json:"snippet"`
		} `json:"items"`
	}
	params := url.Values{"part": {"snippet"}, "videoId": {videoID}, "maxResults": {strconv.Itoa(max)}}
	if err := y.get(ctx, "/commentThreads", params, &out); err != nil {
		return nil, err
	}

	comments := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		comments = append(comments, item.Snippet.TopLevelComment.Snippet.TextDisplay)
	}
	return comments, nil
}

func (y *YouTube) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", y.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: youtube request: %v", model.ErrSourceUnavailable, err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: youtube: %v", model.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		// 403 is how the Data API reports quota exhaustion.
		return fmt.Errorf("%w: youtube status %d", model.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: youtube status %d", model.ErrSourceUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: youtube decode: %v", model.ErrSourceUnavailable, err)
	}
	return nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
