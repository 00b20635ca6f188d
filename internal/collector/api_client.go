package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"github.com/assareh/fragrance-scout/internal/domain"
)

// APIClient fetches through the authenticated Reddit API. The listing wrapper
// does not expose link flair, so Flair stays empty and every post reaches the
// classifier; the dedupe ledger still bounds the cost.
type APIClient struct {
	client  *reddit.Client
	limiter *rate.Limiter
}

// NewAPIClient requires script-app credentials and a userAgent string to
// comply with Reddit's API rules.
func NewAPIClient(id, secret, user, pass, userAgent string) (*APIClient, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: user, Password: pass}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}

	// API rate limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APIClient{client: client, limiter: limiter}, nil
}

func (ac *APIClient) FetchNewPosts(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	if err := ac.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	posts, _, err := ac.client.Subreddit.NewPosts(ctx, sub, &reddit.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("authenticated api error: %w", err)
	}

	result := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		result = append(result, domain.Post{
			ID:         p.FullID,
			Title:      p.Title,
			Body:       p.Body,
			Author:     p.Author,
			Subreddit:  p.SubredditName,
			CreatedUTC: float64(p.Created.Time.Unix()),
			Permalink:  "https://reddit.com" + p.Permalink,
		})
	}
	return result, nil
}

func (ac *APIClient) FetchAuthorProfile(ctx context.Context, username string) (*domain.AuthorProfile, error) {
	if err := ac.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	user, _, err := ac.client.User.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", username, err)
	}

	var created float64
	if user.Created != nil {
		created = float64(user.Created.Time.Unix())
	}

	return &domain.AuthorProfile{
		Username:     user.Name,
		LinkKarma:    user.PostKarma,
		CommentKarma: user.CommentKarma,
		TotalKarma:   user.PostKarma + user.CommentKarma,
		AccountAge:   accountAge(created, time.Now()),
		Verified:     user.HasVerifiedEmail,
	}, nil
}
