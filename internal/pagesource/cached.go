package pagesource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/dshills/wikipath-mcp/internal/storage"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

// Cache defaults
const (
	DefaultLRUSize  = 10000
	DefaultCacheTTL = 24 * time.Hour
)

// CacheConfig configures the Cached source
type CacheConfig struct {
	LRUSize int
	TTL     time.Duration // Zero keeps entries until evicted
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Cached memoizes another Source in memory and, when a store is configured,
// in the SQLite page cache. Concurrent requests for the same page share one
// upstream fetch. Missing pages are cached too.
type Cached struct {
	inner  Source
	store  storage.Storage // optional
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex // serializes read-modify-write of page entries
	pages  *expirable.LRU[string, *storage.Page]
	rarity *lru.Cache[string, float64]
	group  singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps inner. store may be nil for a memory-only cache.
func NewCached(inner Source, store storage.Storage, cfg CacheConfig, logger *slog.Logger) *Cached {
	size := cfg.LRUSize
	if size <= 0 {
		size = DefaultLRUSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	rarity, err := lru.New[string, float64](size)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		rarity, _ = lru.New[string, float64](DefaultLRUSize)
	}

	return &Cached{
		inner:  inner,
		store:  store,
		ttl:    cfg.TTL,
		logger: logger,
		pages:  expirable.NewLRU[string, *storage.Page](size, nil, cfg.TTL),
		rarity: rarity,
	}
}

// PageExists answers from cache when any fetch of title has been recorded
func (c *Cached) PageExists(ctx context.Context, title string) (bool, error) {
	if page, ok := c.lookup(ctx, title); ok {
		c.hits.Add(1)
		return page.Exists, nil
	}
	c.misses.Add(1)

	v, err := c.share(ctx, "exists:"+title, func(ctx context.Context) (interface{}, error) {
		exists, err := c.inner.PageExists(ctx, title)
		if err != nil {
			return false, err
		}
		c.record(ctx, &storage.Page{Title: title, Exists: exists})
		return exists, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Outlinks returns cached links or fetches them once
func (c *Cached) Outlinks(ctx context.Context, title string) ([]string, error) {
	if page, ok := c.lookup(ctx, title); ok {
		if !page.Exists {
			c.hits.Add(1)
			return nil, fmt.Errorf("%w: %s", types.ErrPageNotFound, title)
		}
		if page.HasLinks {
			c.hits.Add(1)
			return copyLinks(page.Links), nil
		}
	}
	c.misses.Add(1)

	v, err := c.share(ctx, "links:"+title, func(ctx context.Context) (interface{}, error) {
		if page, ok := c.pages.Get(title); ok && page.Exists && page.HasLinks {
			return page.Links, nil
		}
		links, err := c.inner.Outlinks(ctx, title)
		if errors.Is(err, types.ErrPageNotFound) {
			c.record(ctx, &storage.Page{Title: title, Exists: false})
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		c.record(ctx, &storage.Page{Title: title, Exists: true, Links: links, HasLinks: true})
		return links, nil
	})
	if err != nil {
		return nil, err
	}
	return copyLinks(v.([]string)), nil
}

// Text returns cached text or fetches it once
func (c *Cached) Text(ctx context.Context, title string) (string, error) {
	if page, ok := c.lookup(ctx, title); ok {
		if !page.Exists {
			c.hits.Add(1)
			return "", fmt.Errorf("%w: %s", types.ErrPageNotFound, title)
		}
		if page.HasText {
			c.hits.Add(1)
			return page.Text, nil
		}
	}
	c.misses.Add(1)

	v, err := c.share(ctx, "text:"+title, func(ctx context.Context) (interface{}, error) {
		if page, ok := c.pages.Get(title); ok && page.Exists && page.HasText {
			return page.Text, nil
		}
		text, err := c.inner.Text(ctx, title)
		if errors.Is(err, types.ErrPageNotFound) {
			c.record(ctx, &storage.Page{Title: title, Exists: false})
			return "", err
		}
		if err != nil {
			return "", err
		}
		c.record(ctx, &storage.Page{Title: title, Exists: true, Text: text, HasText: true})
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// WordRarity memoizes the inner lookup in memory
func (c *Cached) WordRarity(ctx context.Context, word string) (float64, error) {
	if freq, ok := c.rarity.Get(word); ok {
		return freq, nil
	}
	freq, err := c.inner.WordRarity(ctx, word)
	if err != nil {
		return 0, err
	}
	c.rarity.Add(word, freq)
	return freq, nil
}

// share runs fetch once for all concurrent callers of key. The fetch is
// detached from the first caller's cancellation; every caller stops waiting
// when its own ctx ends.
func (c *Cached) share(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stats returns hit and miss counters for page lookups
func (c *Cached) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.pages.Len(),
	}
}

// Clear drops the in-memory entries. The SQLite cache is left untouched.
func (c *Cached) Clear() {
	c.pages.Purge()
	c.rarity.Purge()
}

// lookup checks memory first, then the store for an entry younger than the TTL
func (c *Cached) lookup(ctx context.Context, title string) (*storage.Page, bool) {
	if page, ok := c.pages.Get(title); ok {
		return page, true
	}
	if c.store == nil {
		return nil, false
	}

	page, err := c.store.GetPage(ctx, title)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("page cache read failed", "title", title, "error", err)
		}
		return nil, false
	}
	if c.ttl > 0 && time.Since(page.FetchedAt) > c.ttl {
		return nil, false
	}

	c.pages.Add(title, page)
	return page, true
}

// record merges a fetch result into memory and writes it through to the store.
// Store failures are logged and never fail the fetch.
func (c *Cached) record(ctx context.Context, update *storage.Page) {
	c.mu.Lock()
	merged := &storage.Page{Title: update.Title, Exists: update.Exists}
	if existing, ok := c.pages.Peek(update.Title); ok && update.Exists && existing.Exists {
		merged.Links, merged.HasLinks = existing.Links, existing.HasLinks
		merged.Text, merged.HasText = existing.Text, existing.HasText
	}
	if update.HasLinks {
		merged.Links, merged.HasLinks = copyLinks(update.Links), true
	}
	if update.HasText {
		merged.Text, merged.HasText = update.Text, true
	}
	merged.FetchedAt = time.Now()
	c.pages.Add(update.Title, merged)
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.UpsertPage(ctx, update); err != nil {
		c.logger.Warn("page cache write failed", "title", update.Title, "error", err)
	}
}

func copyLinks(links []string) []string {
	out := make([]string, len(links))
	copy(out, links)
	return out
}
