package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidFrequency is returned for word frequencies outside [0, 1]
	ErrInvalidFrequency = errors.New("word frequency must be between 0 and 1")
	// ErrEmptyTitle is returned when a page has no title
	ErrEmptyTitle = errors.New("page title cannot be empty")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Page operations

// upsertPageWithQuerier is the internal implementation that uses a querier.
// Links are only replaced when page.HasLinks is set, text only when page.HasText
// is set, so a links-only fetch never erases previously cached text.
func (s *SQLiteStorage) upsertPageWithQuerier(ctx context.Context, q querier, page *Page) error {
	if strings.TrimSpace(page.Title) == "" {
		return ErrEmptyTitle
	}

	query := `
		INSERT INTO pages (title, page_exists, has_links, text, has_text, fetched_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			page_exists = excluded.page_exists,
			has_links = MAX(pages.has_links, excluded.has_links),
			text = CASE WHEN excluded.has_text = 1 THEN excluded.text ELSE pages.text END,
			has_text = MAX(pages.has_text, excluded.has_text),
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	if page.FetchedAt.IsZero() {
		page.FetchedAt = now
	}

	var text sql.NullString
	if page.HasText {
		text = sql.NullString{String: page.Text, Valid: true}
	}

	err := q.QueryRowContext(ctx, query,
		page.Title, boolToInt(page.Exists), boolToInt(page.HasLinks), text, boolToInt(page.HasText),
		page.FetchedAt.UnixNano(), now, now).Scan(&page.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	page.UpdatedAt = now

	if !page.HasLinks {
		return nil
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM page_links WHERE page_id = ?`, page.ID); err != nil {
		return fmt.Errorf("failed to clear page links: %w", err)
	}
	for i, link := range page.Links {
		_, err := q.ExecContext(ctx,
			`INSERT INTO page_links (page_id, position, link_title) VALUES (?, ?, ?)`,
			page.ID, i, link)
		if err != nil {
			return fmt.Errorf("failed to store page link: %w", err)
		}
	}

	return nil
}

// UpsertPage stores a page and its links atomically
func (s *SQLiteStorage) UpsertPage(ctx context.Context, page *Page) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.UpsertPage(ctx, page); err != nil {
		return err
	}
	return tx.Commit()
}

// getPageWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getPageWithQuerier(ctx context.Context, q querier, title string) (*Page, error) {
	query := `
		SELECT id, title, page_exists, has_links, text, has_text, fetched_at, created_at, updated_at
		FROM pages
		WHERE title = ?
	`
	var page Page
	var exists, hasLinks, hasText int
	var text sql.NullString
	var fetchedAt int64
	err := q.QueryRowContext(ctx, query, title).Scan(
		&page.ID, &page.Title, &exists, &hasLinks, &text, &hasText,
		&fetchedAt, &page.CreatedAt, &page.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	page.Exists = exists != 0
	page.HasLinks = hasLinks != 0
	page.HasText = hasText != 0
	page.FetchedAt = time.Unix(0, fetchedAt)
	if text.Valid {
		page.Text = text.String
	}

	if !page.HasLinks {
		return &page, nil
	}

	links, err := s.listLinksWithQuerier(ctx, q, page.ID)
	if err != nil {
		return nil, err
	}
	page.Links = links
	return &page, nil
}

func (s *SQLiteStorage) GetPage(ctx context.Context, title string) (*Page, error) {
	return s.getPageWithQuerier(ctx, s.querier(), title)
}

// listLinksWithQuerier returns the outlinks of a page in stored order
func (s *SQLiteStorage) listLinksWithQuerier(ctx context.Context, q querier, pageID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT link_title FROM page_links WHERE page_id = ? ORDER BY position`, pageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	links := make([]string, 0)
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// deletePageWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deletePageWithQuerier(ctx context.Context, q querier, title string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM pages WHERE title = ?`, title)
	return err
}

func (s *SQLiteStorage) DeletePage(ctx context.Context, title string) error {
	return s.deletePageWithQuerier(ctx, s.querier(), title)
}

// purgePagesBeforeWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) purgePagesBeforeWithQuerier(ctx context.Context, q querier, cutoff time.Time) (int, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM pages WHERE fetched_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge pages: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// PurgePagesBefore deletes pages fetched before cutoff and returns how many were removed
func (s *SQLiteStorage) PurgePagesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return s.purgePagesBeforeWithQuerier(ctx, s.querier(), cutoff)
}

// Word frequency operations

// normalizeWord maps a token to the key used in word_frequencies
func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// upsertWordFrequencyWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertWordFrequencyWithQuerier(ctx context.Context, q querier, word string, frequency float64) error {
	if frequency < 0 || frequency > 1 {
		return ErrInvalidFrequency
	}
	key := normalizeWord(word)
	if key == "" {
		return fmt.Errorf("word cannot be empty")
	}

	query := `
		INSERT INTO word_frequencies (word, frequency, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(word) DO UPDATE SET
			frequency = excluded.frequency,
			updated_at = excluded.updated_at
	`
	if _, err := q.ExecContext(ctx, query, key, frequency, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert word frequency: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertWordFrequency(ctx context.Context, word string, frequency float64) error {
	return s.upsertWordFrequencyWithQuerier(ctx, s.querier(), word, frequency)
}

// getWordFrequencyWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getWordFrequencyWithQuerier(ctx context.Context, q querier, word string) (float64, error) {
	var frequency float64
	err := q.QueryRowContext(ctx,
		`SELECT frequency FROM word_frequencies WHERE word = ?`, normalizeWord(word)).Scan(&frequency)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return frequency, nil
}

// GetWordFrequency returns the stored frequency of word; lookups ignore case
func (s *SQLiteStorage) GetWordFrequency(ctx context.Context, word string) (float64, error) {
	return s.getWordFrequencyWithQuerier(ctx, s.querier(), word)
}

// ImportWordFrequencies stores a batch of word frequencies in one transaction
func ImportWordFrequencies(ctx context.Context, store Storage, frequencies map[string]float64) (int, error) {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	count := 0
	for word, freq := range frequencies {
		if err := tx.UpsertWordFrequency(ctx, word, freq); err != nil {
			return 0, fmt.Errorf("word %q: %w", word, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*CacheStatus, error) {
	status := &CacheStatus{}

	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&status.PagesCount)
	if err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages WHERE page_exists = 0").Scan(&status.MissingPagesCount)
	if err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM page_links").Scan(&status.LinksCount)
	if err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM word_frequencies").Scan(&status.WordFrequenciesCount)
	if err != nil {
		return nil, err
	}

	var oldest, newest sql.NullInt64
	err = q.QueryRowContext(ctx, "SELECT MIN(fetched_at), MAX(fetched_at) FROM pages").Scan(&oldest, &newest)
	if err != nil {
		return nil, err
	}
	if oldest.Valid {
		status.OldestFetch = time.Unix(0, oldest.Int64)
	}
	if newest.Valid {
		status.NewestFetch = time.Unix(0, newest.Int64)
	}

	// Calculate database size
	var pageCount, pageSize int
	err = q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.CacheSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible:    true,
		WordFrequenciesLoaded: status.WordFrequenciesCount > 0,
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*CacheStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Transaction implementations

func (t *sqliteTx) UpsertPage(ctx context.Context, page *Page) error {
	return t.storage.upsertPageWithQuerier(ctx, t.querier(), page)
}

func (t *sqliteTx) GetPage(ctx context.Context, title string) (*Page, error) {
	return t.storage.getPageWithQuerier(ctx, t.querier(), title)
}

func (t *sqliteTx) DeletePage(ctx context.Context, title string) error {
	return t.storage.deletePageWithQuerier(ctx, t.querier(), title)
}

func (t *sqliteTx) PurgePagesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return t.storage.purgePagesBeforeWithQuerier(ctx, t.querier(), cutoff)
}

func (t *sqliteTx) UpsertWordFrequency(ctx context.Context, word string, frequency float64) error {
	return t.storage.upsertWordFrequencyWithQuerier(ctx, t.querier(), word, frequency)
}

func (t *sqliteTx) GetWordFrequency(ctx context.Context, word string) (float64, error) {
	return t.storage.getWordFrequencyWithQuerier(ctx, t.querier(), word)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*CacheStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
