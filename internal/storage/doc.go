// Package storage provides the SQLite page cache used by the page sources.
//
// The cache holds what is expensive to fetch from the live wiki:
//   - Page existence
//   - Ordered outbound links
//   - Plain text bodies (only fetched for search targets)
//   - Corpus-wide word frequencies used for uniqueness weighting
//
// It never stores search state. Every search starts from an empty visited set
// regardless of what the cache contains.
//
// # Database Schema
//
// Tables:
//   - pages: title, existence flag, optional text, fetch time
//   - page_links: (page_id, position) -> link title
//   - word_frequencies: lowercase word -> frequency in [0, 1]
//   - schema_version: applied migrations, compared as semantic versions
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.wikipath/wikipath.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.UpsertPage(ctx, &storage.Page{
//	    Title:    "Starbucks",
//	    Exists:   true,
//	    Links:    []string{"Coffee", "Seattle"},
//	    HasLinks: true,
//	})
//
//	page, err := store.GetPage(ctx, "Starbucks")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // not cached yet
//	}
//
// # Partial Updates
//
// HasLinks and HasText mark which parts of a Page are present. An upsert with
// HasText=false keeps the previously cached text, so fetching links after text
// (or the other way round) never loses data.
//
// # Word Frequencies
//
// Frequencies are imported in bulk from a "word<TAB>frequency" file:
//
//	n, err := storage.ImportWordFrequencies(ctx, store, freqs)
//
// Lookups ignore case. Unknown words return ErrNotFound, which the page
// sources translate to a rarity of 0.
//
// # Build Modes
//
// The default build uses modernc.org/sqlite (pure Go). Build with
// -tags sqlite_cgo to use github.com/mattn/go-sqlite3 instead.
package storage
