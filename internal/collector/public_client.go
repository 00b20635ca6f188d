package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/assareh/fragrance-scout/internal/backoff"
	"github.com/assareh/fragrance-scout/internal/domain"
)

const (
	publicHost = "https://www.reddit.com"
	oauthHost  = "https://oauth.reddit.com"

	// Refresh the OAuth token when it is absent or this close to expiry.
	tokenExpirySkew = 5 * time.Minute
)

// PublicClient polls Reddit's public JSON listing endpoints. When client
// credentials are configured it lazily maintains an OAuth token and switches
// to the oauth host; otherwise it stays unauthenticated.
type PublicClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      backoff.Policy
	userAgent  string
	logger     *slog.Logger

	clientID     string
	clientSecret string
	token        string
	tokenExpires time.Time

	// Overridable in tests.
	baseURL  string
	oauthURL string
	tokenURL string
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Name          string  `json:"name"`
				Title         string  `json:"title"`
				SelfText      string  `json:"selftext"`
				Author        string  `json:"author"`
				LinkFlairText string  `json:"link_flair_text"`
				Subreddit     string  `json:"subreddit"`
				CreatedUTC    float64 `json:"created_utc"`
				Permalink     string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type aboutResponse struct {
	Data struct {
		LinkKarma    int     `json:"link_karma"`
		CommentKarma int     `json:"comment_karma"`
		CreatedUTC   float64 `json:"created_utc"`
		IconImg      string  `json:"icon_img"`
		Verified     bool    `json:"verified"`
		IsGold       bool    `json:"is_gold"`
	} `json:"data"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewPublicClient builds the default collector. clientID/clientSecret may be
// empty for unauthenticated access.
func NewPublicClient(userAgent, clientID, clientSecret string, logger *slog.Logger) *PublicClient {
	return &PublicClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// Public JSON limit: 1 req / 2 seconds.
		limiter:      rate.NewLimiter(rate.Every(2*time.Second), 1),
		retry:        backoff.Policy{Attempts: 3, Base: 4 * time.Second, Max: 60 * time.Second},
		userAgent:    userAgent,
		logger:       logger,
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      publicHost,
		oauthURL:     oauthHost,
		tokenURL:     publicHost + "/api/v1/access_token",
	}
}

// FetchNewPosts returns the newest posts for one subreddit, as ordered by
// Reddit. Errors after retry exhaustion surface to the caller, which treats
// them as end-of-feed.
func (pc *PublicClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	path := fmt.Sprintf("/r/%s/new.json?limit=%d", sub, limit)

	var listing listingResponse
	err := pc.retry.Do(ctx, func() error {
		return pc.getJSON(ctx, path, &listing)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", sub, err)
	}

	posts := make([]domain.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		posts = append(posts, domain.Post{
			ID:         d.Name,
			Title:      d.Title,
			Body:       d.SelfText,
			Author:     d.Author,
			Subreddit:  d.Subreddit,
			Flair:      d.LinkFlairText,
			CreatedUTC: d.CreatedUTC,
			Permalink:  "https://reddit.com" + d.Permalink,
		})
	}
	return posts, nil
}

// FetchAuthorProfile looks up /user/{name}/about.json. Single attempt; the
// caller treats any failure as a missing enrichment, never as a hard error.
func (pc *PublicClient) FetchAuthorProfile(ctx context.Context, username string) (*domain.AuthorProfile, error) {
	var about aboutResponse
	path := fmt.Sprintf("/user/%s/about.json", url.PathEscape(username))
	if err := pc.getJSON(ctx, path, &about); err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", username, err)
	}

	d := about.Data
	return &domain.AuthorProfile{
		Username:     username,
		LinkKarma:    d.LinkKarma,
		CommentKarma: d.CommentKarma,
		TotalKarma:   d.LinkKarma + d.CommentKarma,
		AccountAge:   accountAge(d.CreatedUTC, time.Now()),
		IconURL:      d.IconImg,
		Verified:     d.Verified,
		Gold:         d.IsGold,
	}, nil
}

func (pc *PublicClient) getJSON(ctx context.Context, path string, v any) error {
	if err := pc.limiter.Wait(ctx); err != nil {
		return backoff.Permanent(err)
	}

	host := pc.baseURL
	token := pc.ensureToken(ctx)
	if token != "" {
		host = pc.oauthURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+path, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", pc.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	pc.logRateLimit(resp)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		wait := retryAfter(resp)
		pc.logger.Warn("reddit rate limit hit", "retry_after", wait)
		return backoff.RetryAfter(fmt.Errorf("reddit status %d", resp.StatusCode), wait)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("reddit status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return backoff.Permanent(fmt.Errorf("reddit status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return backoff.Permanent(fmt.Errorf("decode listing: %w", err))
	}
	return nil
}

// ensureToken returns a usable bearer token, refreshing lazily when absent or
// within the expiry skew. Failure falls back to unauthenticated access.
func (pc *PublicClient) ensureToken(ctx context.Context) string {
	if pc.clientID == "" || pc.clientSecret == "" {
		return ""
	}
	if pc.token != "" && time.Until(pc.tokenExpires) > tokenExpirySkew {
		return pc.token
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("device_id", "fragrance-scout-v1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return ""
	}
	req.SetBasicAuth(pc.clientID, pc.clientSecret)
	req.Header.Set("User-Agent", pc.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		pc.logger.Error("reddit token request failed", "error", err)
		pc.token = ""
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		pc.logger.Error("reddit token request rejected", "status", resp.StatusCode)
		pc.token = ""
		return ""
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil || tok.AccessToken == "" {
		pc.logger.Error("reddit token response malformed", "error", err)
		pc.token = ""
		return ""
	}

	expiresIn := tok.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	pc.token = tok.AccessToken
	pc.tokenExpires = time.Now().Add(time.Duration(expiresIn) * time.Second)
	pc.logger.Info("obtained reddit oauth token", "expires_in", expiresIn)
	return pc.token
}

func (pc *PublicClient) logRateLimit(resp *http.Response) {
	remaining := resp.Header.Get("X-Ratelimit-Remaining")
	if remaining == "" {
		return
	}
	pc.logger.Debug("reddit rate limit",
		"used", resp.Header.Get("X-Ratelimit-Used"),
		"remaining", remaining,
		"reset", resp.Header.Get("X-Ratelimit-Reset"))

	if v, err := strconv.ParseFloat(remaining, 64); err == nil && v < 20 {
		pc.logger.Warn("reddit rate limit low", "remaining", remaining)
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && v > 0 {
		return time.Duration(v) * time.Second
	}
	return time.Minute
}
