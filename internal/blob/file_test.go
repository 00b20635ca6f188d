package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sent_posts.json", []byte(`{"a":"b"}`)))

	data, err := s.Get(ctx, "sent_posts.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, string(data))
}

func TestFileStoreGetMissing(t *testing.T) {
	s := NewFileStore(t.TempDir())

	_, err := s.Get(context.Background(), "nope.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreOverwrite(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("one")))
	require.NoError(t, s.Put(ctx, "k", []byte("two")))

	data, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestNewSelectsFileStoreWithoutBucket(t *testing.T) {
	s, err := New(context.Background(), "", t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
}
