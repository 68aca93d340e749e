package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/dshills/wikipath-mcp/internal/pagesource"
	"github.com/dshills/wikipath-mcp/internal/storage"
)

// bindFlag binds a flag to a viper key. Flags are registered in init, so a
// failure is a programming error.
func bindFlag(flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// openStore opens the SQLite page cache, creating its directory
func openStore() (*storage.SQLiteStorage, error) {
	path := cfg.Cache.DBPath
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

// openSource builds the configured page source. The returned close function
// releases the page cache, if one was opened.
func openSource() (pagesource.Source, storage.Storage, func(), error) {
	var store storage.Storage
	closeFn := func() {}

	// The fixture source is already in memory
	if cfg.Cache.Enabled && cfg.Source.Kind != pagesource.KindFixture {
		s, err := openStore()
		if err != nil {
			return nil, nil, nil, err
		}
		store = s
		closeFn = func() {
			if err := s.Close(); err != nil {
				logger.Warn("failed to close storage", "error", err)
			}
		}
	}

	source, err := pagesource.New(cfg.SourceOptions(), store, logger)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return source, store, closeFn, nil
}
