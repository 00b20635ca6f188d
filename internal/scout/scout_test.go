package scout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assareh/fragrance-scout/internal/blob"
	"github.com/assareh/fragrance-scout/internal/domain"
	"github.com/assareh/fragrance-scout/internal/store"
)

type fakeCollector struct {
	posts      map[string][]domain.Post
	fetchErrs  map[string]error
	profileErr error
}

func (f *fakeCollector) FetchNewPosts(_ context.Context, subreddit string, _ int) ([]domain.Post, error) {
	if err := f.fetchErrs[subreddit]; err != nil {
		return nil, err
	}
	return f.posts[subreddit], nil
}

func (f *fakeCollector) FetchAuthorProfile(_ context.Context, username string) (*domain.AuthorProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &domain.AuthorProfile{Username: username, TotalKarma: 1234, AccountAge: "2.5 years"}, nil
}

type fakeClassifier struct {
	calls    int
	verdicts map[string]*domain.Verdict
	err      error
}

func (f *fakeClassifier) Classify(_ context.Context, title, _ string) (*domain.Verdict, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.verdicts[title]; ok {
		return v, nil
	}
	return &domain.Verdict{Accept: false, Reason: "not relevant"}, nil
}

func newTestScout(t *testing.T, c domain.Collector, cl domain.Classifier) (*Scout, *store.Ledger, *store.Results) {
	t.Helper()
	fs := blob.NewFileStore(t.TempDir())
	ledger := store.NewLedger(fs, "sent_posts.json")
	results := store.NewResults(fs, "found_posts.json")
	require.NoError(t, ledger.Load(context.Background()))
	require.NoError(t, results.Load(context.Background()))

	opts := Options{Subreddits: []string{"perfumes"}, FetchLimit: 20}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(c, cl, ledger, results, opts, logger), ledger, results
}

func TestRunOnceAcceptStoresAndMarks(t *testing.T) {
	c := &fakeCollector{posts: map[string][]domain.Post{
		"perfumes": {{
			ID:         "t3_x1",
			Title:      "Review of Papillon Anubis",
			Body:       "Smoky incense and jasmine.",
			Author:     "noseblind42",
			Subreddit:  "perfumes",
			CreatedUTC: 1718000000,
			Permalink:  "https://reddit.com/r/perfumes/comments/x1/",
		}},
	}}
	cl := &fakeClassifier{verdicts: map[string]*domain.Verdict{
		"Review of Papillon Anubis": {Accept: true, Reason: "detailed wear test"},
	}}

	s, ledger, results := newTestScout(t, c, cl)
	found, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, found)

	assert.True(t, ledger.Seen("t3_x1"))
	require.Equal(t, 1, results.Count())

	got := results.All()[0]
	assert.Equal(t, "t3_x1", got.ID)
	assert.Equal(t, "detailed wear test", got.Reason)
	assert.Equal(t, "https://reddit.com/r/perfumes/comments/x1/", got.Link)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "noseblind42", got.Profile.Username)
}

func TestRunOnceIsIdempotent(t *testing.T) {
	c := &fakeCollector{posts: map[string][]domain.Post{
		"perfumes": {{ID: "t3_x1", Title: "Review of Papillon Anubis"}},
	}}
	cl := &fakeClassifier{verdicts: map[string]*domain.Verdict{
		"Review of Papillon Anubis": {Accept: true, Reason: "review"},
	}}

	s, _, results := newTestScout(t, c, cl)
	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	_, err = s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, results.Count(), "second cycle must not duplicate")
	assert.Equal(t, 1, cl.calls, "seen post must not be reclassified")
}

func TestRunOnceSkipsDeniedFlairBeforeClassifier(t *testing.T) {
	c := &fakeCollector{posts: map[string][]domain.Post{
		"perfumes": {{ID: "t3_x1", Title: "What should I buy?", Flair: "Recommendation Request"}},
	}}
	cl := &fakeClassifier{}

	s, ledger, results := newTestScout(t, c, cl)
	found, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, found)
	assert.Equal(t, 0, cl.calls)
	assert.False(t, ledger.Seen("t3_x1"))
	assert.Equal(t, 0, results.Count())
}

func TestRunOnceRejectLeavesStoresUntouched(t *testing.T) {
	c := &fakeCollector{posts: map[string][]domain.Post{
		"perfumes": {{ID: "t3_x1", Title: "Best clone of Aventus?"}},
	}}
	cl := &fakeClassifier{}

	s, ledger, results := newTestScout(t, c, cl)
	found, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, found)
	assert.Equal(t, 1, cl.calls)
	assert.False(t, ledger.Seen("t3_x1"), "rejected post may be reclassified later")
	assert.Equal(t, 0, results.Count())
}

func TestRunOnceClassifierErrorLeavesPostUnmarked(t *testing.T) {
	c := &fakeCollector{posts: map[string][]domain.Post{
		"perfumes": {{ID: "t3_x1", Title: "Review of Papillon Anubis"}},
	}}
	cl := &fakeClassifier{err: errors.New("backend unavailable")}

	s, ledger, results := newTestScout(t, c, cl)
	found, err := s.RunOnce(context.Background())
	require.NoError(t, err, "classifier failure must not fail the cycle")

	assert.Equal(t, 0, found)
	assert.False(t, ledger.Seen("t3_x1"))
	assert.Equal(t, 0, results.Count())
}

func TestRunOnceFeedFailureDoesNotStopOtherFeeds(t *testing.T) {
	c := &fakeCollector{
		posts: map[string][]domain.Post{
			"nicheperfumes": {{ID: "t3_n1", Title: "Areej Le Dore Koh-i-Noor impressions"}},
		},
		fetchErrs: map[string]error{"perfumes": errors.New("503 from reddit")},
	}
	cl := &fakeClassifier{verdicts: map[string]*domain.Verdict{
		"Areej Le Dore Koh-i-Noor impressions": {Accept: true, Reason: "niche house impressions"},
	}}

	s, _, results := newTestScout(t, c, cl)
	s.opts.Subreddits = []string{"perfumes", "nicheperfumes"}

	found, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, found)
	assert.Equal(t, 1, results.Count())
}

func TestRunOnceProfileFailureStillAccepts(t *testing.T) {
	c := &fakeCollector{
		posts: map[string][]domain.Post{
			"perfumes": {{ID: "t3_x1", Title: "Review of Papillon Anubis", Author: "noseblind42"}},
		},
		profileErr: errors.New("user not found"),
	}
	cl := &fakeClassifier{verdicts: map[string]*domain.Verdict{
		"Review of Papillon Anubis": {Accept: true, Reason: "review"},
	}}

	s, _, results := newTestScout(t, c, cl)
	found, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, found)

	require.Equal(t, 1, results.Count())
	assert.Nil(t, results.All()[0].Profile)
}
