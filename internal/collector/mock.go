package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/assareh/fragrance-scout/internal/domain"
)

// MockClient implements domain.Collector with fake data for local runs
// without network access.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (mc *MockClient) FetchNewPosts(_ context.Context, sub string, limit int) ([]domain.Post, error) {
	posts := make([]domain.Post, 0, limit)
	for i := 0; i < limit; i++ {
		posts = append(posts, domain.Post{
			ID:         fmt.Sprintf("t3_mock_%s_%d", sub, i),
			Title:      fmt.Sprintf("Wear test #%d: Papillon Anubis on skin", i),
			Body:       "Smoky incense opening, leathery drydown, excellent longevity.",
			Author:     "simulated_user",
			Subreddit:  sub,
			Flair:      "Review",
			CreatedUTC: float64(time.Now().Unix()),
			Permalink:  "https://reddit.com/r/" + sub + "/mock",
		})
	}
	return posts, nil
}

func (mc *MockClient) FetchAuthorProfile(_ context.Context, username string) (*domain.AuthorProfile, error) {
	return &domain.AuthorProfile{
		Username:     username,
		LinkKarma:    1200,
		CommentKarma: 3400,
		TotalKarma:   4600,
		AccountAge:   "3.5 years",
	}, nil
}
