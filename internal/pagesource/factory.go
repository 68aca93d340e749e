package pagesource

import (
	"fmt"
	"log/slog"

	"github.com/dshills/wikipath-mcp/internal/storage"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

// Config selects and configures a Source
type Config struct {
	Kind        string // KindWikipedia or KindFixture
	FixturePath string

	Wikipedia WikipediaConfig

	CacheEnabled bool
	Cache        CacheConfig

	BreakerEnabled bool
	Breaker        BreakerConfig
}

// New creates the Source described by cfg.
//
// A Wikipedia source is wrapped as Cached(Breaker(Wikipedia)) so cache hits
// never count against the breaker. store may be nil; it backs both the page
// cache and the word rarity lookup.
func New(cfg Config, store storage.Storage, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Kind {
	case KindFixture:
		if cfg.FixturePath == "" {
			return nil, fmt.Errorf("%w: fixture source requires a fixture path", types.ErrConfiguration)
		}
		static, err := LoadFixture(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded fixture page source", "path", cfg.FixturePath, "pages", static.Len())
		return static, nil

	case KindWikipedia, "":
		var rarity RarityLookup
		if store != nil {
			rarity = NewStorageRarity(store)
		}

		var src Source = NewWikipedia(cfg.Wikipedia, rarity, logger)
		if cfg.BreakerEnabled {
			src = NewBreaker(src, "wikipedia", cfg.Breaker, logger)
		}
		if cfg.CacheEnabled {
			src = NewCached(src, store, cfg.Cache, logger)
		}
		return src, nil

	default:
		return nil, fmt.Errorf("%w: unknown page source %q", types.ErrConfiguration, cfg.Kind)
	}
}
