package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/assareh/fragrance-scout/internal/domain"
)

// LocalClassifier calls an OpenAI-compatible chat completions endpoint,
// typically a self-hosted model server. The response is free-form text
// expected to contain JSON, so it goes through the sanitize pipeline. No
// retries: failures are terminal for the call and the post is retried on
// the next cycle.
type LocalClassifier struct {
	url        string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat any           `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewLocalClassifier(url, model string, logger *slog.Logger) *LocalClassifier {
	return &LocalClassifier{
		url:        url,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (c *LocalClassifier) Classify(ctx context.Context, title, body string) (*domain.Verdict, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: filterPrompt},
			{Role: "user", Content: userMessage(title, body)},
		},
		Temperature: 0.3,
		MaxTokens:   500,
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "fragrance_review_filter",
				"strict": true,
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"accept": map[string]any{"type": "boolean"},
						"reason": map[string]any{"type": "string"},
					},
					"required":             []string{"accept", "reason"},
					"additionalProperties": false,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local llm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("local llm status %d: %s", resp.StatusCode, detail)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("no choices in chat response")
	}

	return ParseVerdict(cr.Choices[0].Message.Content)
}
