package pagesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dshills/wikipath-mcp/pkg/types"
)

// staticPage is one entry of an in-memory link graph
type staticPage struct {
	Links []string `json:"links"`
	Text  string   `json:"text"`
}

// Fixture is the JSON document LoadFixture reads:
//
//	{"pages": {"Coffee": {"links": ["Caffeine"], "text": "..."}}, "rarity": {"coffee": 0.0001}}
type Fixture struct {
	Pages  map[string]staticPage `json:"pages"`
	Rarity map[string]float64    `json:"rarity"`
}

// Static is an in-memory Source backed by a fixed link graph.
// It serves offline runs and tests.
type Static struct {
	mu     sync.RWMutex
	pages  map[string]staticPage
	rarity map[string]float64
}

// NewStatic creates an empty in-memory source
func NewStatic() *Static {
	return &Static{
		pages:  make(map[string]staticPage),
		rarity: make(map[string]float64),
	}
}

// AddPage adds or replaces a page. Links keep the given order.
func (s *Static) AddPage(title, text string, links ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	linksCopy := make([]string, len(links))
	copy(linksCopy, links)
	s.pages[title] = staticPage{Links: linksCopy, Text: text}
}

// SetRarity sets the frequency of word; lookups ignore case
func (s *Static) SetRarity(word string, frequency float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rarity[strings.ToLower(word)] = frequency
}

// Len returns the number of pages
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// PageExists reports whether title was added
func (s *Static) PageExists(ctx context.Context, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pages[title]
	return ok, nil
}

// Outlinks returns a copy of the page links
func (s *Static) Outlinks(ctx context.Context, title string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrPageNotFound, title)
	}
	links := make([]string, len(page.Links))
	copy(links, page.Links)
	return links, nil
}

// Text returns the page text
func (s *Static) Text(ctx context.Context, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[title]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrPageNotFound, title)
	}
	return page.Text, nil
}

// WordRarity returns the configured frequency, or 0 for unknown words
func (s *Static) WordRarity(ctx context.Context, word string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rarity[strings.ToLower(word)], nil
}

// ParseFixture reads a fixture document into a new Static source
func ParseFixture(r io.Reader) (*Static, error) {
	var fixture Fixture
	if err := json.NewDecoder(r).Decode(&fixture); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	s := NewStatic()
	for title, page := range fixture.Pages {
		if strings.TrimSpace(title) == "" {
			return nil, fmt.Errorf("%w: fixture page with empty title", types.ErrConfiguration)
		}
		s.AddPage(title, page.Text, page.Links...)
	}
	for word, freq := range fixture.Rarity {
		if freq < 0 || freq > 1 {
			return nil, fmt.Errorf("%w: rarity of %q must be between 0 and 1", types.ErrConfiguration, word)
		}
		s.SetRarity(word, freq)
	}
	return s, nil
}

// LoadFixture reads a fixture file from disk
func LoadFixture(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseFixture(f)
}
