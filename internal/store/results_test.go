package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assareh/fragrance-scout/internal/blob"
	"github.com/assareh/fragrance-scout/internal/domain"
)

func TestResultsRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := blob.NewFileStore(t.TempDir())

	r := NewResults(fs, "found_posts.json")
	require.NoError(t, r.Load(ctx))
	assert.Equal(t, 0, r.Count())

	r.Append(domain.AcceptedPost{
		ID:      "t3_abc",
		FoundAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Title:   "Review of Papillon Anubis",
		Author:  "noseblind42",
		Reason:  "detailed wear test",
	})
	r.Append(domain.AcceptedPost{ID: "t3_def", Title: "Areej Le Dore Koh-i-Noor impressions"})
	require.NoError(t, r.Persist(ctx))

	reloaded := NewResults(fs, "found_posts.json")
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, 2, reloaded.Count())

	all := reloaded.All()
	assert.Equal(t, "t3_abc", all[0].ID)
	assert.Equal(t, "detailed wear test", all[0].Reason)
	assert.Equal(t, "t3_def", all[1].ID)
}

func TestResultsAllReturnsSnapshot(t *testing.T) {
	r := NewResults(blob.NewFileStore(t.TempDir()), "found_posts.json")
	r.Append(domain.AcceptedPost{ID: "t3_abc"})

	all := r.All()
	all[0].ID = "mutated"
	assert.Equal(t, "t3_abc", r.All()[0].ID)
}

func TestResultsMissingBlobIsEmpty(t *testing.T) {
	r := NewResults(blob.NewFileStore(t.TempDir()), "found_posts.json")
	require.NoError(t, r.Load(context.Background()))
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.All())
}
