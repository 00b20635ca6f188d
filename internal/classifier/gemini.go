package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/assareh/fragrance-scout/internal/backoff"
	"github.com/assareh/fragrance-scout/internal/domain"
)

const geminiHost = "https://generativelanguage.googleapis.com"

// GeminiClassifier calls the hosted Gemini API with a schema-constrained
// response. The API gives no retry-after signal for quota, so the client
// self-throttles below the free-tier 10 req/min ceiling.
type GeminiClassifier struct {
	apiKey     string
	model      string
	httpClient *http.Client
	throttle   *rate.Limiter
	retry      backoff.Policy
	logger     *slog.Logger

	// Overridable in tests.
	baseURL string
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func NewGeminiClassifier(apiKey, model string, logger *slog.Logger) *GeminiClassifier {
	return &GeminiClassifier{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// ~9 requests per minute to stay under the 10 req/min free tier.
		throttle: rate.NewLimiter(rate.Every(6500*time.Millisecond), 1),
		retry:    backoff.Policy{Attempts: 3, Base: 2 * time.Second, Max: 60 * time.Second},
		logger:   logger,
		baseURL:  geminiHost,
	}
}

func (c *GeminiClassifier) Classify(ctx context.Context, title, body string) (*domain.Verdict, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{
			{Text: filterPrompt + "\n\n" + userMessage(title, body)},
		}}},
		GenerationConfig: geminiGenConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"accept": map[string]any{"type": "boolean"},
					"reason": map[string]any{"type": "string"},
				},
				"required": []string{"accept", "reason"},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var verdict *domain.Verdict
	err = c.retry.Do(ctx, func() error {
		v, callErr := c.call(ctx, endpoint, payload)
		if callErr != nil {
			return callErr
		}
		verdict = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

func (c *GeminiClassifier) call(ctx context.Context, endpoint string, payload []byte) (*domain.Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		// Quota exhaustion is terminal for this call; the post stays
		// unmarked and is retried on a later cycle.
		c.logger.Error("gemini quota exceeded", "status", resp.StatusCode)
		return nil, backoff.Permanent(fmt.Errorf("gemini quota exceeded"))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("gemini status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, backoff.Permanent(fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(detail))))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode gemini response: %w", err))
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, backoff.Permanent(fmt.Errorf("empty gemini response"))
	}

	var verdict domain.Verdict
	text := gr.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parse gemini verdict: %w", err))
	}
	return &verdict, nil
}
