// Package scout runs the scan cycle: fetch each configured feed, filter and
// classify new posts, and persist the ones worth keeping.
package scout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/assareh/fragrance-scout/internal/collector"
	"github.com/assareh/fragrance-scout/internal/domain"
	"github.com/assareh/fragrance-scout/internal/store"
)

// Options holds the per-cycle tunables.
type Options struct {
	Subreddits  []string
	FetchLimit  int
	AcceptDelay time.Duration
	FeedDelay   time.Duration
}

// Scout orchestrates one scan cycle. Build a fresh one per cycle; it is not
// safe for concurrent use.
type Scout struct {
	collector  domain.Collector
	classifier domain.Classifier
	ledger     *store.Ledger
	results    *store.Results
	opts       Options
	logger     *slog.Logger

	// Published timestamps render in this zone.
	displayZone *time.Location
}

func New(c domain.Collector, cl domain.Classifier, ledger *store.Ledger, results *store.Results, opts Options, logger *slog.Logger) *Scout {
	zone, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		zone = time.UTC
	}
	return &Scout{
		collector:   c,
		classifier:  cl,
		ledger:      ledger,
		results:     results,
		opts:        opts,
		logger:      logger,
		displayZone: zone,
	}
}

// RunOnce scans every configured subreddit. A feed that fails to fetch is
// logged and skipped; a post that fails to process is logged and skipped; the
// cycle itself only fails on context cancellation.
func (s *Scout) RunOnce(ctx context.Context) (int, error) {
	found := 0
	for i, subreddit := range s.opts.Subreddits {
		if i > 0 && s.opts.FeedDelay > 0 {
			if err := sleep(ctx, s.opts.FeedDelay); err != nil {
				return found, err
			}
		}

		posts, err := s.collector.FetchNewPosts(ctx, subreddit, s.opts.FetchLimit)
		if err != nil {
			s.logger.Error("feed fetch failed", "subreddit", subreddit, "error", err)
			continue
		}
		s.logger.Info("feed fetched", "subreddit", subreddit, "posts", len(posts))

		for _, post := range posts {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			accepted, err := s.processPost(ctx, post)
			if err != nil {
				s.logger.Error("post processing failed", "post", post.ID, "error", err)
				continue
			}
			if accepted {
				found++
				if s.opts.AcceptDelay > 0 {
					if err := sleep(ctx, s.opts.AcceptDelay); err != nil {
						return found, err
					}
				}
			}
		}
	}
	s.logger.Info("scan cycle complete", "found", found, "ledger_size", s.ledger.Len())
	return found, nil
}

// processPost takes a single post through the filter chain. Only an accepted
// post mutates any store; results persist before the ledger mark so a crash
// between the two repeats work rather than losing a finding.
func (s *Scout) processPost(ctx context.Context, post domain.Post) (bool, error) {
	if collector.ShouldSkipFlair(post.Flair) {
		s.logger.Debug("skipping by flair", "post", post.ID, "flair", post.Flair)
		return false, nil
	}
	if s.ledger.Seen(post.ID) {
		return false, nil
	}

	body := collector.StripMarkup(post.Body)
	verdict, err := s.classifier.Classify(ctx, post.Title, body)
	if err != nil {
		// Left unmarked on purpose: the post gets another chance next cycle.
		s.logger.Warn("post left unclassified", "post", post.ID, "error", err)
		return false, nil
	}
	if !verdict.Accept {
		s.logger.Debug("post rejected", "post", post.ID, "reason", verdict.Reason)
		return false, nil
	}

	s.logger.Info("post accepted", "post", post.ID, "title", post.Title, "reason", verdict.Reason)

	accepted := domain.AcceptedPost{
		ID:        post.ID,
		FoundAt:   time.Now().UTC(),
		Title:     post.Title,
		Author:    post.Author,
		Link:      post.Permalink,
		Published: s.formatCreated(post.CreatedUTC),
		Reason:    verdict.Reason,
		Body:      body,
		Subreddit: post.Subreddit,
		Flair:     post.Flair,
		Profile:   s.fetchProfile(ctx, post.Author),
	}

	s.results.Append(accepted)
	if err := s.results.Persist(ctx); err != nil {
		return false, fmt.Errorf("persist results: %w", err)
	}

	s.ledger.MarkProcessed(post.ID, accepted.FoundAt)
	if err := s.ledger.Persist(ctx); err != nil {
		return false, fmt.Errorf("persist ledger: %w", err)
	}
	return true, nil
}

// fetchProfile is best effort; a failed lookup never blocks acceptance.
func (s *Scout) fetchProfile(ctx context.Context, username string) *domain.AuthorProfile {
	if username == "" || username == "[deleted]" {
		return nil
	}
	profile, err := s.collector.FetchAuthorProfile(ctx, username)
	if err != nil {
		s.logger.Warn("author profile lookup failed", "author", username, "error", err)
		return nil
	}
	return profile
}

func (s *Scout) formatCreated(createdUTC float64) string {
	if createdUTC <= 0 {
		return "Unknown"
	}
	t := time.Unix(int64(createdUTC), 0).In(s.displayZone)
	return t.Format("January 2, 2006 at 3:04 PM MST")
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
