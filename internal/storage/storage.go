package storage

import (
	"context"
	"time"
)

// Storage defines the interface for caching fetched pages and word frequencies.
// It never holds search state: frontier and visited pages live in the engine.
type Storage interface {
	// Page operations
	UpsertPage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, title string) (*Page, error)
	DeletePage(ctx context.Context, title string) error
	PurgePagesBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Word frequency operations
	UpsertWordFrequency(ctx context.Context, word string, frequency float64) error
	GetWordFrequency(ctx context.Context, word string) (float64, error)

	// Status operations
	GetStatus(ctx context.Context) (*CacheStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Page represents a cached page of the link graph
type Page struct {
	ID     int64
	Title  string
	Exists bool

	// Content. HasLinks and HasText tell apart "not fetched yet" from "empty".
	Links    []string
	HasLinks bool
	Text     string
	HasText  bool

	FetchedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CacheStatus contains statistics about the page cache
type CacheStatus struct {
	PagesCount           int
	MissingPagesCount    int
	LinksCount           int
	WordFrequenciesCount int
	CacheSizeMB          float64
	OldestFetch          time.Time
	NewestFetch          time.Time
	Health               HealthStatus
}

// HealthStatus represents the health of the cache
type HealthStatus struct {
	DatabaseAccessible    bool
	WordFrequenciesLoaded bool
}
