package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sanks011/Influence-IQ/internal/config"
	"github.com/sanks011/Influence-IQ/internal/model"
)

const (
	generativeModel = "gemini-pro"
	promptComments  = 5
)

// Synthesizer produces the final metric set by prompting the generative
// scoring service with a summary of the channel signal. Any failure on that
// path — transport, rate limit, unparsable or schema-invalid output —
// delegates to the deterministic fallback scorer; Synthesize never fails.
type Synthesizer struct {
	client   *http.Client
	apiKey   string
	baseURL  string
	fallback *FallbackScorer
	logger   zerolog.Logger
}

func NewSynthesizer(cfg *config.Config, fallback *FallbackScorer, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		client:   &http.Client{Timeout: cfg.Scoring.SynthesisTimeout},
		apiKey:   cfg.GeminiAPIKey,
		baseURL:  strings.TrimRight(cfg.GeminiBaseURL, "/"),
		fallback: fallback,
		logger:   logger,
	}
}

// remotePayload is the strict response contract. Pointer fields distinguish
// "absent" from zero so partially-typed payloads are rejected instead of
// silently accepted.
type remotePayload struct {
	OverallScore *float64 `json:"overallScore"`
	Metrics      struct {
		AudienceSentiment *remoteMetric `json:"audienceSentiment"`
		ContentQuality    *remoteMetric `json:"contentQuality"`
		Credibility       *remoteMetric `json:"credibility"`
		Relevance         *remoteMetric `json:"relevance"`
		Appropriateness   *remoteMetric `json:"appropriateness"`
		Engagement        *remoteMetric `json:"engagement"`
	} `json:"metrics"`
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
}

type remoteMetric struct {
	Score       *float64 `json:"score"`
	Description string   `json:"description"`
}

func (p *remotePayload) validate() error {
	for name, m := range map[string]*remoteMetric{
		model.MetricAudienceSentiment: p.Metrics.AudienceSentiment,
		model.MetricContentQuality:    p.Metrics.ContentQuality,
		model.MetricCredibility:       p.Metrics.Credibility,
		model.MetricRelevance:         p.Metrics.Relevance,
		model.MetricAppropriateness:   p.Metrics.Appropriateness,
		model.MetricEngagement:        p.Metrics.Engagement,
	} {
		if m == nil || m.Score == nil {
			return fmt.Errorf("%w: metric %s missing", model.ErrSynthesisUnavailable, name)
		}
	}
	return nil
}

// Synthesize scores the channel signal, preferring the generative service.
func (s *Synthesizer) Synthesize(ctx context.Context, sig *model.ChannelSignal) *Synthesis {
	if s.apiKey == "" {
		s.logger.Debug().Msg("synthesis: no API key configured, using fallback scorer")
		return s.fallback.Score(sig)
	}

	raw, err := s.generate(ctx, buildPrompt(sig))
	if err != nil {
		s.logger.Warn().Err(err).Str("channel_id", sig.Channel.ID).Msg("synthesis: generative call failed, using fallback scorer")
		return s.fallback.Score(sig)
	}

	payload, err := parsePayload(raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("channel_id", sig.Channel.ID).Msg("synthesis: unparsable response, using fallback scorer")
		return s.fallback.Score(sig)
	}

	return s.postProcess(payload, sig)
}

// postProcess normalizes every metric, enforces the mandatory Wikipedia
// penalty, attaches the detected terms and recomputes the overall score
// from the fixed weights. The externally supplied overall is discarded.
func (s *Synthesizer) postProcess(p *remotePayload, sig *model.ChannelSignal) *Synthesis {
	metrics := model.MetricSet{
		AudienceSentiment: normalizedMetric(p.Metrics.AudienceSentiment),
		ContentQuality:    normalizedMetric(p.Metrics.ContentQuality),
		Credibility:       normalizedMetric(p.Metrics.Credibility),
		Relevance:         normalizedMetric(p.Metrics.Relevance),
		Appropriateness:   normalizedMetric(p.Metrics.Appropriateness),
		Engagement:        normalizedMetric(p.Metrics.Engagement),
	}

	applyWikipediaPenalty(&metrics, sig.Wikipedia.Exists)
	metrics.Appropriateness.DetectedTerms = sig.Terms.Detected

	return &Synthesis{
		OverallScore:    Overall(metrics),
		Metrics:         metrics,
		Analysis:        p.Analysis,
		Recommendations: p.Recommendations,
	}
}

func normalizedMetric(m *remoteMetric) model.MetricScore {
	return model.MetricScore{
		Score:       Normalize(*m.Score),
		Description: m.Description,
	}
}

// parsePayload decodes the raw model output: first as-is, then by
// extracting the first balanced top-level JSON object (models tend to wrap
// the object in prose or markdown fences).
func parsePayload(raw string) (*remotePayload, error) {
	var p remotePayload
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		if err := p.validate(); err != nil {
			return nil, err
		}
		return &p, nil
	}

	obj, ok := extractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", model.ErrSynthesisUnavailable)
	}
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSynthesisUnavailable, err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// extractJSONObject returns the first balanced {...} span in s, tracking
// string literals and escapes so braces inside values don't break matching.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// generate calls the Gemini-style generateContent endpoint and returns the
// raw text of the first candidate.
func (s *Synthesizer) generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     0.2,
			"maxOutputTokens": 2048,
		},
	}

	body, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, generativeModel, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", model.ErrSynthesisUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrSynthesisUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: generative service", model.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", model.ErrSynthesisUnavailable, resp.StatusCode)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", model.ErrSynthesisUnavailable, err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidates", model.ErrSynthesisUnavailable)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// buildPrompt serializes the channel signal into the scoring prompt with
// explicit instructions to return the documented JSON shape.
func buildPrompt(sig *model.ChannelSignal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this YouTube creator based on the following data and provide metrics on a scale of 0-100:\n\n")
	fmt.Fprintf(&b, "CHANNEL: %s\n", sig.Channel.Title)
	fmt.Fprintf(&b, "DESCRIPTION: %s\n", sig.Channel.Description)
	fmt.Fprintf(&b, "SUBSCRIBERS: %d\n", sig.Channel.SubscriberCount)
	fmt.Fprintf(&b, "VIDEOS: %d\n", sig.Channel.VideoCount)
	fmt.Fprintf(&b, "VIEWS: %d\n\n", sig.Channel.ViewCount)

	fmt.Fprintf(&b, "CREDIBILITY:\n- Wikipedia: %s\n", yesNo(sig.Wikipedia.Exists))
	if sig.Wikipedia.Exists {
		fmt.Fprintf(&b, "- Wikipedia Article Quality: %s\n", sig.Wikipedia.Quality)
	}
	fmt.Fprintf(&b, "- News Articles: %d\n", len(sig.NewsArticles))
	for _, a := range sig.NewsArticles[:min(len(sig.NewsArticles), 3)] {
		fmt.Fprintf(&b, "  - %q\n", a.Title)
	}

	fmt.Fprintf(&b, "\nAUDIENCE ENGAGEMENT:\n- Reddit Posts: %d\n- Sentiment: %.1f%% positive, %.1f%% negative\n\n",
		len(sig.RedditPosts), sig.Sentiment.Positive, sig.Sentiment.Negative)

	fmt.Fprintf(&b, "CONTENT ANALYSIS:\n- Educational Terms: %d\n- Inappropriate Terms: %d (%d severe, %d moderate, %d mild)\n\n",
		sig.Terms.EducationalTerms, sig.Terms.Total(),
		sig.Terms.Counts[model.TierSevere], sig.Terms.Counts[model.TierModerate], sig.Terms.Counts[model.TierMild])

	fmt.Fprintf(&b, "SAMPLE COMMENTS (%d of %d):\n", min(len(sig.Comments), promptComments), len(sig.Comments))
	for _, c := range sig.Comments[:min(len(sig.Comments), promptComments)] {
		fmt.Fprintf(&b, "- %q\n", c)
	}

	b.WriteString(`
Provide a valid JSON response with this exact structure:
{
  "overallScore": number (0-100),
  "metrics": {
    "audienceSentiment": {"score": number, "description": "string"},
    "contentQuality": {"score": number, "description": "string"},
    "credibility": {"score": number, "description": "string"},
    "relevance": {"score": number, "description": "string"},
    "appropriateness": {"score": number, "description": "string"},
    "engagement": {"score": number, "description": "string"}
  },
  "analysis": "string",
  "recommendations": ["string", "string", "string", "string"]
}

IMPORTANT SCORING RULES:
- No Wikipedia page reduces content quality by 40 points
- Educational terms should increase content quality
- Inappropriate terms should decrease appropriateness
`)

	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
