package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// wikipediaStub serves search and extract queries for a single page.
func wikipediaStub(t *testing.T, title string, extractLen int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"query": map[string]any{
					"search": []map[string]string{{"title": title}},
				},
			})
		case q.Get("prop") == "extracts":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"query": map[string]any{
					"pages": map[string]any{
						"12345": map[string]string{"extract": strings.Repeat("x", extractLen)},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPageInfo_QualityTiers(t *testing.T) {
	tests := []struct {
		name       string
		extractLen int
		want       model.WikipediaQuality
	}{
		{"high", 6000, model.WikipediaQualityHigh},
		{"medium", 2000, model.WikipediaQualityMedium},
		{"low", 500, model.WikipediaQualityLow},
		{"boundary medium", 1000, model.WikipediaQualityLow},
		{"boundary high", 5000, model.WikipediaQualityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := wikipediaStub(t, "Rick Astley", tt.extractLen)
			defer srv.Close()

			info, err := NewWikipedia(srv.URL, time.Second).PageInfo(context.Background(), "Rick Astley")
			if err != nil {
				t.Fatal(err)
			}
			if !info.Exists {
				t.Fatal("page should exist")
			}
			if info.Quality != tt.want {
				t.Errorf("quality = %q, want %q", info.Quality, tt.want)
			}
		})
	}
}

func TestPageInfo_RejectsLooseMatch(t *testing.T) {
	srv := wikipediaStub(t, "Completely Different Article", 6000)
	defer srv.Close()

	info, err := NewWikipedia(srv.URL, time.Second).PageInfo(context.Background(), "Rick Astley")
	if err != nil {
		t.Fatal(err)
	}
	if info.Exists {
		t.Errorf("non-overlapping title should report absence, got %+v", info)
	}
}

func TestPageInfo_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{"search": []any{}},
		})
	}))
	defer srv.Close()

	info, err := NewWikipedia(srv.URL, time.Second).PageInfo(context.Background(), "Nobody Famous")
	if err != nil {
		t.Fatal(err)
	}
	if info.Exists {
		t.Error("missing page should report absence without error")
	}
}

func TestPageInfo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewWikipedia(srv.URL, time.Second).PageInfo(context.Background(), "Rick Astley")
	if !errors.Is(err, model.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}
