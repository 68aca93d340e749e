package pagesource

import (
	"context"
)

// Source resolves titles against a link graph such as Wikipedia.
//
// Outlinks and Text return an error wrapping types.ErrPageNotFound when the
// title does not resolve, and types.ErrPageFetch for transient failures.
type Source interface {
	// PageExists reports whether title resolves to a page
	PageExists(ctx context.Context, title string) (bool, error)

	// Outlinks returns the titles the page links to, in source order
	Outlinks(ctx context.Context, title string) ([]string, error)

	// Text returns the plain text body of the page
	Text(ctx context.Context, title string) (string, error)

	// WordRarity returns a corpus-wide frequency estimate in [0, 1].
	// Unknown words return 0.
	WordRarity(ctx context.Context, word string) (float64, error)
}

// RarityLookup supplies word frequencies to sources that have none of their own
type RarityLookup interface {
	WordRarity(ctx context.Context, word string) (float64, error)
}

// Source kinds understood by New
const (
	KindWikipedia = "wikipedia"
	KindFixture   = "fixture"
)
