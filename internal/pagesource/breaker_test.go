package pagesource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/wikipath-mcp/pkg/types"
)

func TestBreaker_OpensAfterFailures(t *testing.T) {
	ctx := context.Background()
	inner := newCountingSource()
	inner.fail.Store(true)

	b := NewBreaker(inner, "test", BreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		TripRatio:   0.5,
	}, nil)

	for i := 0; i < minRequestsToTrip; i++ {
		_, err := b.Outlinks(ctx, "Starbucks")
		assert.ErrorIs(t, err, types.ErrPageFetch)
	}
	assert.Equal(t, "open", b.State())

	// Rejected without reaching the upstream, still a branch error
	_, err := b.Outlinks(ctx, "Starbucks")
	assert.ErrorIs(t, err, types.ErrPageFetch)
	assert.True(t, types.IsBranchError(err))
	assert.Equal(t, int32(minRequestsToTrip), inner.outlinks.Load())
}

func TestBreaker_MissingPagesDoNotTrip(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(newCountingSource(), "test", DefaultBreakerConfig(), nil)

	for i := 0; i < 10; i++ {
		_, err := b.Outlinks(ctx, "Nowhere")
		assert.ErrorIs(t, err, types.ErrPageNotFound)
	}
	assert.Equal(t, "closed", b.State())

	links, err := b.Outlinks(ctx, "Starbucks")
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee", "Seattle"}, links)
}

func TestBreaker_PassThrough(t *testing.T) {
	ctx := context.Background()
	b := NewBreaker(newCountingSource(), "test", DefaultBreakerConfig(), nil)

	exists, err := b.PageExists(ctx, "Coffee")
	require.NoError(t, err)
	assert.True(t, exists)

	text, err := b.Text(ctx, "Coffee")
	require.NoError(t, err)
	assert.Equal(t, "A brewed drink", text)

	freq, err := b.WordRarity(ctx, "coffee")
	require.NoError(t, err)
	assert.Equal(t, 0.001, freq)
}

func TestNew(t *testing.T) {
	t.Run("fixture requires path", func(t *testing.T) {
		_, err := New(Config{Kind: KindFixture}, nil, nil)
		assert.ErrorIs(t, err, types.ErrConfiguration)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := New(Config{Kind: "gopher"}, nil, nil)
		assert.ErrorIs(t, err, types.ErrConfiguration)
	})

	t.Run("wikipedia with decorators", func(t *testing.T) {
		src, err := New(Config{
			Kind:           KindWikipedia,
			CacheEnabled:   true,
			BreakerEnabled: true,
			Breaker:        DefaultBreakerConfig(),
		}, setupTestStore(t), nil)
		require.NoError(t, err)

		cached, ok := src.(*Cached)
		require.True(t, ok)
		_, ok = cached.inner.(*Breaker)
		assert.True(t, ok)
	})

	t.Run("bare wikipedia", func(t *testing.T) {
		src, err := New(Config{Kind: KindWikipedia}, nil, nil)
		require.NoError(t, err)
		_, ok := src.(*Wikipedia)
		assert.True(t, ok)
	})
}
