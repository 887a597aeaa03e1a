package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"osrs_tax_columns/internal/config"
	"osrs_tax_columns/internal/retry"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "one"))
	require.NoError(t, s.Set(ctx, "k", "two"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// removing an absent key is not an error
	require.NoError(t, s.Remove(ctx, "k"))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	s, err := OpenSQLite(ctx, path, config.DefaultResilienceConfig)
	require.NoError(t, err)
	exerciseStore(t, s)

	require.NoError(t, s.Set(ctx, "durable", `["Dragon bones"]`))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path, config.DefaultResilienceConfig)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "durable")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["Dragon bones"]`, v)
}

func TestClassifyRetriesOnlyContention(t *testing.T) {
	cfg := retry.Config{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Timeout: time.Second}
	tests := []struct {
		name  string
		err   error
		calls int
	}{
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, 3},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, 3},
		{"schema", sqlite3.Error{Code: sqlite3.ErrError}, 1},
		{"readonly", sqlite3.Error{Code: sqlite3.ErrReadonly}, 1},
		{"not sqlite", errors.New("connection reset"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry.Do(context.Background(), cfg, func(context.Context) error {
				calls++
				return classify(tt.err)
			})
			require.Error(t, err)
			assert.Equal(t, tt.calls, calls)
		})
	}
}

func TestSQLiteSchemaErrorIsNotRetried(t *testing.T) {
	ctx := context.Background()
	slow := config.ResilienceConfig{
		StoreRead:  retry.Config{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second, Timeout: time.Second},
		StoreWrite: retry.Config{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second, Timeout: time.Second},
	}
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "store.db"), slow)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.ExecContext(ctx, `DROP TABLE kv`)
	require.NoError(t, err)

	start := time.Now()
	assert.Error(t, s.Set(ctx, "k", "v"))
	_, _, err = s.Get(ctx, "k")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
