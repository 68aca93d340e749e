package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	return storage
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	assert.NotNil(t, storage)
	assert.NotNil(t, storage.db)
}

func TestClose(t *testing.T) {
	storage := setupTestDB(t)
	err := storage.Close()
	assert.NoError(t, err)
}

func TestUpsertPage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	page := &Page{
		Title:    "Starbucks",
		Exists:   true,
		Links:    []string{"Coffee", "Seattle", "Howard Schultz"},
		HasLinks: true,
	}

	err := storage.UpsertPage(ctx, page)
	require.NoError(t, err)
	assert.Greater(t, page.ID, int64(0))
	assert.False(t, page.FetchedAt.IsZero())

	retrieved, err := storage.GetPage(ctx, "Starbucks")
	require.NoError(t, err)
	assert.Equal(t, page.ID, retrieved.ID)
	assert.True(t, retrieved.Exists)
	assert.True(t, retrieved.HasLinks)
	assert.False(t, retrieved.HasText)
	assert.Equal(t, []string{"Coffee", "Seattle", "Howard Schultz"}, retrieved.Links)
}

func TestUpsertPage_EmptyTitle(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	err := storage.UpsertPage(context.Background(), &Page{Title: "  "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestUpsertPage_ReplacesLinks(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Coffee", Exists: true, Links: []string{"Bean", "Espresso"}, HasLinks: true,
	}))
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Coffee", Exists: true, Links: []string{"Latte"}, HasLinks: true,
	}))

	retrieved, err := storage.GetPage(ctx, "Coffee")
	require.NoError(t, err)
	assert.Equal(t, []string{"Latte"}, retrieved.Links)
}

func TestUpsertPage_PartialUpdatesKeepData(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()

	// Text first, then links
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Strawberry", Exists: true, Text: "The garden strawberry is a hybrid.", HasText: true,
	}))
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Strawberry", Exists: true, Links: []string{"Fragaria"}, HasLinks: true,
	}))

	retrieved, err := storage.GetPage(ctx, "Strawberry")
	require.NoError(t, err)
	assert.True(t, retrieved.HasText)
	assert.Equal(t, "The garden strawberry is a hybrid.", retrieved.Text)
	assert.True(t, retrieved.HasLinks)
	assert.Equal(t, []string{"Fragaria"}, retrieved.Links)

	// A links-less update must not drop the links
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Strawberry", Exists: true, Text: "Updated.", HasText: true,
	}))
	retrieved, err = storage.GetPage(ctx, "Strawberry")
	require.NoError(t, err)
	assert.Equal(t, "Updated.", retrieved.Text)
	assert.Equal(t, []string{"Fragaria"}, retrieved.Links)
}

func TestUpsertPage_EmptyLinksAreCached(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Dead end", Exists: true, Links: nil, HasLinks: true,
	}))

	retrieved, err := storage.GetPage(ctx, "Dead end")
	require.NoError(t, err)
	assert.True(t, retrieved.HasLinks)
	assert.Empty(t, retrieved.Links)
}

func TestUpsertPage_MissingPage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.UpsertPage(ctx, &Page{Title: "No such article", Exists: false}))

	retrieved, err := storage.GetPage(ctx, "No such article")
	require.NoError(t, err)
	assert.False(t, retrieved.Exists)
}

func TestGetPage_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	_, err := storage.GetPage(context.Background(), "Nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Seattle", Exists: true, Links: []string{"Washington"}, HasLinks: true,
	}))

	require.NoError(t, storage.DeletePage(ctx, "Seattle"))

	_, err := storage.GetPage(ctx, "Seattle")
	assert.ErrorIs(t, err, ErrNotFound)

	status, err := storage.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.LinksCount, "links should cascade with the page")
}

func TestPurgePagesBefore(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Old", Exists: true, HasLinks: true, FetchedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "Fresh", Exists: true, HasLinks: true, FetchedAt: now,
	}))

	removed, err := storage.PurgePagesBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = storage.GetPage(ctx, "Old")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = storage.GetPage(ctx, "Fresh")
	assert.NoError(t, err)
}

func TestWordFrequency(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.UpsertWordFrequency(ctx, "Coffee", 0.0001))

	freq, err := storage.GetWordFrequency(ctx, "COFFEE")
	require.NoError(t, err)
	assert.InDelta(t, 0.0001, freq, 1e-12)

	// Overwrite
	require.NoError(t, storage.UpsertWordFrequency(ctx, "coffee", 0.0002))
	freq, err = storage.GetWordFrequency(ctx, "coffee")
	require.NoError(t, err)
	assert.InDelta(t, 0.0002, freq, 1e-12)

	_, err = storage.GetWordFrequency(ctx, "zyzzyva")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWordFrequency_Invalid(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	tests := []struct {
		name string
		word string
		freq float64
	}{
		{"negative", "the", -0.1},
		{"above one", "the", 1.5},
		{"empty word", "  ", 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storage.UpsertWordFrequency(ctx, tt.word, tt.freq)
			assert.Error(t, err)
		})
	}
}

func TestImportWordFrequencies(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	n, err := ImportWordFrequencies(ctx, storage, map[string]float64{
		"the":        0.05,
		"coffee":     0.0001,
		"strawberry": 0.00001,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	status, err := storage.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.WordFrequenciesCount)
	assert.True(t, status.Health.WordFrequenciesLoaded)
}

func TestImportWordFrequencies_RollsBackOnError(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	_, err := ImportWordFrequencies(ctx, storage, map[string]float64{
		"bad": 2.0,
	})
	require.Error(t, err)

	status, err := storage.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.WordFrequenciesCount)
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.UpsertPage(ctx, &Page{
		Title: "A", Exists: true, Links: []string{"B", "C"}, HasLinks: true,
	}))
	require.NoError(t, storage.UpsertPage(ctx, &Page{Title: "Missing", Exists: false}))

	status, err := storage.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.PagesCount)
	assert.Equal(t, 1, status.MissingPagesCount)
	assert.Equal(t, 2, status.LinksCount)
	assert.Equal(t, 0, status.WordFrequenciesCount)
	assert.True(t, status.Health.DatabaseAccessible)
	assert.False(t, status.Health.WordFrequenciesLoaded)
	assert.False(t, status.OldestFetch.IsZero())
	assert.GreaterOrEqual(t, status.CacheSizeMB, 0.0)
}

func TestTransactionRollback(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.UpsertPage(ctx, &Page{Title: "Temp", Exists: true}))
	_, err = tx.GetPage(ctx, "Temp")
	require.NoError(t, err)

	require.NoError(t, tx.Rollback())

	_, err = storage.GetPage(ctx, "Temp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNestedTransactionRejected(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
}
