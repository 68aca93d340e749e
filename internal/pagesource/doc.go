// Package pagesource resolves page titles to outbound links, plain text and
// word rarity.
//
// Wikipedia talks to the MediaWiki Action API. Requests are rate limited with
// golang.org/x/time/rate and retried with exponential backoff. Only main
// namespace links are returned unless AllNamespaces is set.
//
// Static serves a fixed in-memory graph, loaded from a JSON fixture or built
// with AddPage. Tests and offline runs use it.
//
// Two decorators wrap any Source:
//
//   - Cached keeps pages in an expiring LRU and in the SQLite page cache, and
//     collapses concurrent fetches of one title with singleflight.
//   - Breaker opens a gobreaker circuit when the upstream keeps failing.
//
// Errors wrap types.ErrPageNotFound for titles that do not resolve and
// types.ErrPageFetch for everything a retry later might fix.
//
// Usage:
//
//	src, err := pagesource.New(cfg, store, logger)
//	links, err := src.Outlinks(ctx, "Coffee")
package pagesource
