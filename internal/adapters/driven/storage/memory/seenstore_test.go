package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
)

func seenItem(title, url string) domain.CandidateItem {
	return domain.CandidateItem{Title: title, URL: url, Source: "BBC", Category: domain.CategoryGeopolitical}
}

func TestNewSeenStore(t *testing.T) {
	store := NewSeenStore()
	require.NotNil(t, store)
	assert.NoError(t, store.Close())
}

func TestSeenStore_FilterNew_Idempotent(t *testing.T) {
	store := NewSeenStore()
	ctx := context.Background()
	items := []domain.CandidateItem{
		seenItem("Talks resume", "https://news.example/talks"),
		seenItem("Talks resume", "https://news.example/talks?utm_campaign=x#top"),
		seenItem("Ceasefire holds", "https://news.example/ceasefire"),
	}

	fresh, err := store.FilterNew(ctx, items)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "Ceasefire holds", fresh[1].Title)

	fresh, err = store.FilterNew(ctx, items)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestSeenStore_FilterNew_CancelledContext(t *testing.T) {
	store := NewSeenStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FilterNew(ctx, []domain.CandidateItem{seenItem("a", "https://a.example")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeenStore_CleanupAndStats(t *testing.T) {
	store := NewSeenStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return now.Add(-8 * 24 * time.Hour) }
	_, err := store.FilterNew(ctx, []domain.CandidateItem{seenItem("old", "https://news.example/old")})
	require.NoError(t, err)

	store.now = func() time.Time { return now.Add(-7 * time.Hour) }
	_, err = store.FilterNew(ctx, []domain.CandidateItem{seenItem("last night", "https://news.example/night")})
	require.NoError(t, err)

	store.now = func() time.Time { return now }
	_, err = store.FilterNew(ctx, []domain.CandidateItem{seenItem("fresh", "https://news.example/fresh")})
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreStats{Total: 3, Today: 1}, stats)

	removed, err := store.Cleanup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = store.Cleanup(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
