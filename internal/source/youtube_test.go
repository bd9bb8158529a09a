package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sanks011/Influence-IQ/internal/model"
)

const ytChannelID = "UCuAXFkgsw1L7xaCfnd5JJOw"

// youtubeStub answers the Data API endpoints the client uses.
func youtubeStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/videos":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"snippet": map[string]string{"channelId": ytChannelID}},
				},
			})
		case "/search":
			if r.URL.Query().Get("type") == "channel" {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"items": []map[string]any{
						{"snippet": map[string]string{"channelId": ytChannelID}},
					},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": map[string]string{"videoId": "vid1"}},
					{"id": map[string]string{"videoId": "vid2"}},
				},
			})
		case "/channels":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{
					"id": ytChannelID,
					"snippet": map[string]any{
						"title":       "Rick Astley",
						"description": "Official channel",
						"thumbnails":  map[string]any{"high": map[string]string{"url": "http://img/hq.jpg"}},
					},
					"statistics": map[string]string{
						"subscriberCount": "4200000",
						"videoCount":      "250",
						"viewCount":       "999999999",
					},
				}},
			})
		case "/commentThreads":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"snippet": map[string]any{"topLevelComment": map[string]any{"snippet": map[string]string{"textDisplay": "never gonna give"}}}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestResolveChannelID_Forms(t *testing.T) {
	srv := youtubeStub(t)
	defer srv.Close()
	yt := NewYouTube("key", srv.URL, time.Second)

	tests := []struct {
		name  string
		query string
	}{
		{"raw channel ID", ytChannelID},
		{"channel URL", "https://www.youtube.com/channel/" + ytChannelID},
		{"video URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"short video URL", "https://youtu.be/dQw4w9WgXcQ"},
		{"handle URL", "https://www.youtube.com/@RickAstley"},
		{"custom URL", "https://www.youtube.com/c/RickAstley"},
		{"user URL", "https://www.youtube.com/user/rickastley"},
		{"bare name", "Rick Astley"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := yt.ResolveChannelID(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("resolve %q: %v", tt.query, err)
			}
			if got != ytChannelID {
				t.Errorf("resolved %q, want %q", got, ytChannelID)
			}
		})
	}
}

func TestResolveChannelID_RawIDSkipsNetwork(t *testing.T) {
	yt := NewYouTube("key", "http://127.0.0.1:1", time.Second)

	got, err := yt.ResolveChannelID(context.Background(), ytChannelID)
	if err != nil {
		t.Fatalf("raw ID should resolve without network: %v", err)
	}
	if got != ytChannelID {
		t.Errorf("got %q", got)
	}
}

func TestChannel_ParsesStatistics(t *testing.T) {
	srv := youtubeStub(t)
	defer srv.Close()
	yt := NewYouTube("key", srv.URL, time.Second)

	info, err := yt.Channel(context.Background(), ytChannelID)
	if err != nil {
		t.Fatal(err)
	}

	if info.Title != "Rick Astley" {
		t.Errorf("title = %q", info.Title)
	}
	if info.SubscriberCount != 4_200_000 {
		t.Errorf("subscribers = %d", info.SubscriberCount)
	}
	if info.Thumbnail != "http://img/hq.jpg" {
		t.Errorf("thumbnail = %q", info.Thumbnail)
	}
}

func TestYouTube_QuotaMapsToRateLimited(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		yt := NewYouTube("key", srv.URL, time.Second)

		_, err := yt.Channel(context.Background(), ytChannelID)
		srv.Close()

		if !errors.Is(err, model.ErrRateLimited) {
			t.Errorf("status %d: err = %v, want ErrRateLimited", status, err)
		}
	}
}

func TestYouTube_ServerErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	yt := NewYouTube("key", srv.URL, time.Second)

	_, err := yt.RecentVideoIDs(context.Background(), ytChannelID, 5)
	if !errors.Is(err, model.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestComments_ExtractsText(t *testing.T) {
	srv := youtubeStub(t)
	defer srv.Close()
	yt := NewYouTube("key", srv.URL, time.Second)

	comments, err := yt.Comments(context.Background(), "vid1", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 1 || comments[0] != "never gonna give" {
		t.Errorf("comments = %v", comments)
	}
}

func TestParseCount(t *testing.T) {
	if got := parseCount("12345"); got != 12345 {
		t.Errorf("parseCount = %d", got)
	}
	// Hidden subscriber counts come back empty.
	if got := parseCount(""); got != 0 {
		t.Errorf("parseCount empty = %d, want 0", got)
	}
}
