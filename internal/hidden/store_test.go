package hidden

import (
	"context"
	"errors"
	"testing"

	"osrs_tax_columns/internal/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()

	s := Load(ctx, kv, DefaultKey)
	require.NoError(t, s.Add(ctx, "Dragon bones"))

	raw, ok, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["Dragon bones"]`, raw)

	reloaded := Load(ctx, kv, DefaultKey)
	assert.True(t, reloaded.Has("Dragon bones"))
	assert.Equal(t, 1, reloaded.Len())

	require.NoError(t, reloaded.Clear(ctx))
	_, ok, err = kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok, "clear must remove the entry, not store an empty list")
	assert.False(t, reloaded.Has("Dragon bones"))
	assert.Equal(t, 0, reloaded.Len())
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := Load(ctx, kv, DefaultKey)

	require.NoError(t, s.Add(ctx, "Yew logs"))
	require.NoError(t, s.Add(ctx, "Abyssal whip"))
	require.NoError(t, s.Add(ctx, "Yew logs"))

	raw, _, _ := kv.Get(ctx, DefaultKey)
	assert.Equal(t, `["Yew logs","Abyssal whip"]`, raw)
	assert.Equal(t, []string{"Abyssal whip", "Yew logs"}, s.Items())
}

func TestCorruptEntryLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, DefaultKey, "{not json"))

	s := Load(ctx, kv, DefaultKey)
	assert.Equal(t, 0, s.Len())

	// the next mutation overwrites the corrupt entry
	require.NoError(t, s.Add(ctx, "Coal"))
	raw, _, _ := kv.Get(ctx, DefaultKey)
	assert.Equal(t, `["Coal"]`, raw)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk I/O error")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk I/O error")
}

func (failingStore) Remove(context.Context, string) error {
	return errors.New("disk I/O error")
}

func TestReadFailureLoadsEmptyAndWriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, failingStore{}, DefaultKey)
	assert.Equal(t, 0, s.Len())

	err := s.Add(ctx, "Coal")
	assert.Error(t, err)
	assert.True(t, s.Has("Coal"))
}

// flakyStore fails the next failures reads, then serves from Memory.
type flakyStore struct {
	*kvstore.Memory
	failures int
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failures > 0 {
		f.failures--
		return "", false, errors.New("database is locked")
	}
	return f.Memory.Get(ctx, key)
}

func TestFailedLoadDoesNotPruneStoredItems(t *testing.T) {
	ctx := context.Background()
	kv := &flakyStore{Memory: kvstore.NewMemory(), failures: 1}
	require.NoError(t, kv.Set(ctx, DefaultKey, `["Dragon bones","Yew logs"]`))

	s := Load(ctx, kv, DefaultKey)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Add(ctx, "Coal"))
	raw, _, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `["Dragon bones","Yew logs","Coal"]`, raw)
	assert.True(t, s.Has("Dragon bones"))
	assert.Equal(t, 3, s.Len())
}

func TestFailedLoadRefusesBlindWrite(t *testing.T) {
	ctx := context.Background()
	kv := &flakyStore{Memory: kvstore.NewMemory(), failures: 2}
	require.NoError(t, kv.Set(ctx, DefaultKey, `["Dragon bones"]`))

	s := Load(ctx, kv, DefaultKey)
	assert.Error(t, s.Add(ctx, "Coal"))
	assert.True(t, s.Has("Coal"))

	raw, _, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `["Dragon bones"]`, raw)

	// the read recovered, so the next write merges
	require.NoError(t, s.Add(ctx, "Yew logs"))
	raw, _, err = kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `["Dragon bones","Coal","Yew logs"]`, raw)
}
