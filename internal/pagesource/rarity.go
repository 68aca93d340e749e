package pagesource

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/wikipath-mcp/internal/storage"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

// StorageRarity looks up word frequencies imported into the cache database
type StorageRarity struct {
	store storage.Storage
}

// NewStorageRarity wraps a storage as a RarityLookup
func NewStorageRarity(store storage.Storage) *StorageRarity {
	return &StorageRarity{store: store}
}

// WordRarity returns the stored frequency; words never imported have rarity 0
func (r *StorageRarity) WordRarity(ctx context.Context, word string) (float64, error) {
	freq, err := r.store.GetWordFrequency(ctx, word)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: word frequency %q: %v", types.ErrPageFetch, word, err)
	}
	return freq, nil
}
