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

const defaultWikipediaBaseURL = "https://en.wikipedia.org/w/api.php"

// Extract-length thresholds for the quality tier.
const (
	wikiHighExtractLen   = 5000
	wikiMediumExtractLen = 1000
)

// Wikipedia checks whether a creator has an encyclopedia page and tiers
// its quality by article substance.
type Wikipedia struct {
	client  *http.Client
	baseURL string
}

func NewWikipedia(baseURL string, timeout time.Duration) *Wikipedia {
	if baseURL == "" {
		baseURL = defaultWikipediaBaseURL
	}
	return &Wikipedia{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// PageInfo looks the creator up by name. A non-matching or missing page
// reports Exists=false with no error; transport failures return an error
// for the aggregator to degrade.
func (w *Wikipedia) PageInfo(ctx context.Context, name string) (model.WikipediaInfo, error) {
	query := strings.Join(strings.Fields(name), " ")

	title, err := w.searchTitle(ctx, query)
	if err != nil {
		return model.WikipediaInfo{}, err
	}
	if title == "" {
		return model.WikipediaInfo{Exists: false}, nil
	}

	// Require the page title and the query to overlap before trusting the
	// hit; search happily returns loosely related pages.
	titleLower := strings.ToLower(title)
	queryLower := strings.ToLower(query)
	if !strings.Contains(titleLower, queryLower) && !strings.Contains(queryLower, titleLower) {
		return model.WikipediaInfo{Exists: false}, nil
	}

	extract, err := w.pageExtract(ctx, title)
	if err != nil {
		return model.WikipediaInfo{}, err
	}

	quality := model.WikipediaQualityLow
	switch {
	case len(extract) > wikiHighExtractLen:
		quality = model.WikipediaQualityHigh
	case len(extract) > wikiMediumExtractLen:
		quality = model.WikipediaQualityMedium
	}

	return model.WikipediaInfo{Exists: true, Title: title, Quality: quality}, nil
}

func (w *Wikipedia) searchTitle(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action": {"query"}, "list": {"search"}, "srsearch": {query},
		"format": {"json"}, "origin": {"*"},
	}

	var out struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := w.get(ctx, params, &out); err != nil {
		return "", err
	}
	if len(out.Query.Search) == 0 {
		return "", nil
	}
	return out.Query.Search[0].Title, nil
}

func (w *Wikipedia) pageExtract(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action": {"query"}, "prop": {"extracts"}, "exintro": {"1"},
		"titles": {title}, "format": {"json"}, "origin": {"*"},
	}

	var out struct {
		Query struct {
			Pages map[string]struct {
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := w.get(ctx, params, &out); err != nil {
		return "", err
	}
	for id, page := range out.Query.Pages {
		if strings.HasPrefix(id, "-") {
			continue
		}
		return page.Extract, nil
	}
	return "", nil
}

func (w *Wikipedia) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: wikipedia request: %v", model.ErrSourceUnavailable, err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: wikipedia: %v", model.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: wikipedia status %d", model.ErrSourceUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: wikipedia decode: %v", model.ErrSourceUnavailable, err)
	}
	return nil
}
