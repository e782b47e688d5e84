package sqlite

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/bnema/support-agent-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newStore(t *testing.T) *HistoryStore {
	t.Helper()
	config := viper.New()
	config.Set("history.sqlite_path", filepath.Join(t.TempDir(), "nested", "history.db"))
	store, err := NewHistoryStore(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entry(t *testing.T, query string, at time.Time) domain.HistoryEntry {
	t.Helper()
	e, err := domain.NewHistoryEntry(query, "answer to "+query, domain.FormatTimestamp(at), map[string]string{"category": "billing"})
	require.NoError(t, err)
	return e
}

func TestHistoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	first := entry(t, "where is my invoice", now)
	second := entry(t, "update payment method", now.Add(time.Minute))
	require.NoError(t, store.Append(ctx, "user-1", first))
	require.NoError(t, store.Append(ctx, "user-2", entry(t, "other user", now)))
	require.NoError(t, store.Append(ctx, "user-1", second))

	got, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.HistoryEntry{first, second}, got)

	require.NoError(t, store.Clear(ctx, "user-1"))
	got, err = store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)

	others, err := store.Load(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestHistoryStoreConcurrentAppends(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	const writes = 40
	var group errgroup.Group
	for i := 0; i < writes; i++ {
		e := entry(t, "query "+strconv.Itoa(i), now)
		group.Go(func() error {
			return store.Append(context.Background(), "user-1", e)
		})
	}
	require.NoError(t, group.Wait())

	got, err := store.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, got, writes)
}

func TestHistoryStoreAppendValidates(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	assert.ErrorIs(t, store.Append(context.Background(), "", entry(t, "q", time.Now().UTC())), domain.ErrValidation)
	assert.ErrorIs(t, store.Append(context.Background(), "user-1", domain.HistoryEntry{Query: "q", Resolution: "r"}), domain.ErrValidation)
}
