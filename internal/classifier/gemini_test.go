package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/assareh/fragrance-scout/internal/backoff"
)

func newTestGemini(serverURL string) *GeminiClassifier {
	c := NewGeminiClassifier("test-key", "gemini-2.5-flash", testLogger())
	c.throttle = rate.NewLimiter(rate.Inf, 1)
	c.retry = backoff.Policy{Attempts: 3, Base: time.Millisecond, Max: 4 * time.Millisecond}
	c.baseURL = serverURL
	return c
}

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return string(b)
}

func TestGeminiClassifierAccept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		_, _ = w.Write([]byte(geminiReply(`{"accept": true, "reason": "wear test with note breakdown"}`)))
	}))
	defer server.Close()

	c := newTestGemini(server.URL)
	v, err := c.Classify(context.Background(), "Bortnikoff Murano", "Amber and musk over three days.")
	require.NoError(t, err)
	assert.True(t, v.Accept)
	assert.Equal(t, "wear test with note breakdown", v.Reason)
}

func TestGeminiClassifierQuotaIsTerminal(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestGemini(server.URL)
	v, err := c.Classify(context.Background(), "t", "b")
	assert.Error(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 1, calls, "quota errors must not be retried")
}

func TestGeminiClassifierRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(geminiReply(`{"accept": false, "reason": "recommendation request"}`)))
	}))
	defer server.Close()

	c := newTestGemini(server.URL)
	v, err := c.Classify(context.Background(), "t", "b")
	require.NoError(t, err)
	assert.False(t, v.Accept)
	assert.Equal(t, 3, calls)
}

func TestGeminiClassifierMalformedVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(geminiReply("not json at all")))
	}))
	defer server.Close()

	c := newTestGemini(server.URL)
	_, err := c.Classify(context.Background(), "t", "b")
	assert.Error(t, err)
}
