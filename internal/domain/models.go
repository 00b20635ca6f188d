package domain

import (
	"context"
	"time"
)

// Post is a single unit fetched from a subreddit listing. Immutable once
// fetched; the ID (Reddit fullname, e.g. t3_abc123) is the dedupe key.
type Post struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	Flair      string  `json:"flair"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
}

// Verdict is the classifier's decision for a single post.
type Verdict struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason"`
}

// AuthorProfile is a best-effort snapshot taken once at acceptance time.
// It is never refreshed; staleness is accepted.
type AuthorProfile struct {
	Username     string `json:"username"`
	LinkKarma    int    `json:"link_karma"`
	CommentKarma int    `json:"comment_karma"`
	TotalKarma   int    `json:"total_karma"`
	AccountAge   string `json:"account_age"`
	IconURL      string `json:"icon_img,omitempty"`
	Verified     bool   `json:"verified"`
	Gold         bool   `json:"is_gold"`
}

// AcceptedPost is a post that passed classification, as persisted in the
// result store. Immutable after creation; there is no update or delete path.
type AcceptedPost struct {
	ID        string         `json:"id"`
	FoundAt   time.Time      `json:"timestamp"`
	Title     string         `json:"title"`
	Author    string         `json:"author"`
	Link      string         `json:"link"`
	Published string         `json:"published"`
	Reason    string         `json:"reason"`
	Body      string         `json:"body"`
	Subreddit string         `json:"subreddit"`
	Flair     string         `json:"flair"`
	Profile   *AuthorProfile `json:"author_profile,omitempty"`
}

// Collector defines the interface for feed fetching and author lookups.
type Collector interface {
	FetchNewPosts(ctx context.Context, subreddit string, limit int) ([]Post, error)
	FetchAuthorProfile(ctx context.Context, username string) (*AuthorProfile, error)
}

// Classifier decides whether a post is worth keeping. A non-nil error means
// the post could not be classified on this call; callers must skip it without
// marking it processed, so it is retried on a future cycle.
type Classifier interface {
	Classify(ctx context.Context, title, body string) (*Verdict, error)
}
