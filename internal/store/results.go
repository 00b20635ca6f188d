package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/assareh/fragrance-scout/internal/blob"
	"github.com/assareh/fragrance-scout/internal/domain"
)

// Results is the append-ordered collection of accepted posts. No size bound
// and no delete path; durability of historical findings is the point.
type Results struct {
	blob  blob.Store
	key   string
	posts []domain.AcceptedPost
}

type resultsFile struct {
	Posts []domain.AcceptedPost `json:"posts"`
}

func NewResults(store blob.Store, key string) *Results {
	return &Results{blob: store, key: key}
}

// Load reads the persisted collection. A missing blob is an empty collection.
func (r *Results) Load(ctx context.Context) error {
	data, err := r.blob.Get(ctx, r.key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}

	var file resultsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse results: %w", err)
	}
	r.posts = file.Posts
	return nil
}

// Append adds one accepted post; callers persist immediately after.
func (r *Results) Append(post domain.AcceptedPost) {
	r.posts = append(r.posts, post)
}

// Persist writes the whole collection back to durable storage.
func (r *Results) Persist(ctx context.Context) error {
	data, err := json.MarshalIndent(resultsFile{Posts: r.posts}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := r.blob.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}
	return nil
}

// All returns a snapshot copy in append order; presentation reverses it for
// most-recent-first display.
func (r *Results) All() []domain.AcceptedPost {
	out := make([]domain.AcceptedPost, len(r.posts))
	copy(out, r.posts)
	return out
}

// Count returns the number of accepted posts.
func (r *Results) Count() int { return len(r.posts) }
