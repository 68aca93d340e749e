package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/wikipath-mcp/internal/frontier"
	"github.com/dshills/wikipath-mcp/internal/pagesource"
	"github.com/dshills/wikipath-mcp/internal/relevance"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

// Search defaults
const (
	DefaultNeighborsToCheck = 5
	DefaultWorkers          = 4

	// peekFactor bounds how far past the head prefetch looks for distinct titles
	peekFactor = 4
)

// State is the lifecycle of one search run
type State int

const (
	StateInit State = iota
	StateExpanding
	StateFound
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateExpanding:
		return "expanding"
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds the options of a search
type Config struct {
	Source string
	Target string

	WordUniqueness   bool // Weight title words by corpus rarity
	NeighborsToCheck int  // Candidates kept per expansion, also the BFS fan-out cap
	UseBFS           bool // Breadth first instead of greedy best first

	Workers  int           // Pages fetched and scored concurrently ahead of the crawl
	MaxSteps int           // Accepted pages before giving up, 0 for no limit
	Timeout  time.Duration // Wall clock limit of a run, 0 for none
}

// DefaultConfig returns the default search options without endpoints
func DefaultConfig() Config {
	return Config{
		WordUniqueness:   true,
		NeighborsToCheck: DefaultNeighborsToCheck,
		Workers:          DefaultWorkers,
	}
}

// Validate rejects configurations a search cannot start with
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("%w: source title is required", types.ErrConfiguration)
	}
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("%w: target title is required", types.ErrConfiguration)
	}
	if c.NeighborsToCheck <= 0 {
		return fmt.Errorf("%w: neighbors to check must be positive, got %d", types.ErrConfiguration, c.NeighborsToCheck)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must be >= 0, got %d", types.ErrConfiguration, c.MaxSteps)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0", types.ErrConfiguration)
	}
	return nil
}

// VisitFunc observes every accepted page with the candidates it produced.
// top is nil when the page could not be scored.
type VisitFunc func(rec types.PageRecord, top []types.Candidate)

// Engine finds a chain of links from a source page to a target page.
//
// An Engine owns its registry and frontier and runs one search at a time.
// Accessors must not be called while Search is running.
type Engine struct {
	source pagesource.Source
	logger *slog.Logger
	cfg    Config

	registry *Registry
	frontier frontier.Frontier
	state    State

	foundAs        string // title the target was recorded under
	budgetExceeded bool

	onVisit VisitFunc
}

// NewEngine creates an engine over source. logger may be nil.
func NewEngine(source pagesource.Source, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		source:   source,
		logger:   logger,
		cfg:      cfg,
		registry: NewRegistry(),
		frontier: frontier.New(cfg.UseBFS),
		state:    StateInit,
	}
}

// OnVisit sets the callback run after each accepted page is scored
func (e *Engine) OnVisit(fn VisitFunc) {
	e.onVisit = fn
}

// scored is the expansion result of one title
type scored struct {
	top []types.Candidate
	err error
}

// Search runs a crawl from the source to the target.
//
// It returns ErrConfiguration for invalid options and ErrPageNotFound when the
// source or target does not exist. Not finding a path is not an error: the
// result has Found set to false. A rejected, cancelled or timed out run
// leaves the engine reset and returns the error.
func (e *Engine) Search(ctx context.Context) (*types.PathResult, error) {
	e.Reset()
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	e.logger.Info("search started",
		"source", e.cfg.Source,
		"target", e.cfg.Target,
		"bfs", e.cfg.UseBFS,
		"neighbors", e.cfg.NeighborsToCheck,
		"word_uniqueness", e.cfg.WordUniqueness)

	if err := e.run(ctx); err != nil {
		e.Reset()
		return nil, err
	}

	result := e.Result()
	result.Duration = time.Since(start)

	e.logger.Info("search finished",
		"state", e.state.String(),
		"visited", result.VisitedCount,
		"path_length", result.PathLength(),
		"budget_exceeded", result.BudgetExceeded,
		"duration", result.Duration)

	return result, nil
}

func (e *Engine) run(ctx context.Context) error {
	if err := e.checkExists(ctx, e.cfg.Source, "source"); err != nil {
		return err
	}
	if err := e.checkExists(ctx, e.cfg.Target, "target"); err != nil {
		return err
	}

	e.state = StateExpanding

	if types.SameTitle(e.cfg.Source, e.cfg.Target) {
		e.registry.Visit(e.cfg.Source, "")
		e.foundAs = e.cfg.Source
		e.state = StateFound
		return nil
	}

	profile, err := relevance.TargetProfile(ctx, e.source, e.cfg.Target)
	if err != nil {
		return err
	}
	scorer := relevance.NewScorer(e.source, e.cfg.WordUniqueness)

	e.frontier.Push(frontier.Entry{Title: e.cfg.Source})
	memo := make(map[string]scored)
	steps := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, ok := e.frontier.Pop()
		if !ok {
			e.state = StateExhausted
			return nil
		}
		if e.registry.Has(entry.Title) {
			continue
		}

		if e.cfg.MaxSteps > 0 && steps >= e.cfg.MaxSteps {
			e.budgetExceeded = true
			e.state = StateExhausted
			return nil
		}

		e.registry.Visit(entry.Title, entry.Parent)
		steps++

		res, ok := memo[entry.Title]
		if !ok {
			e.prefetch(ctx, scorer, profile, entry.Title, memo)
			res = memo[entry.Title]
		}
		delete(memo, entry.Title)

		rec, _ := e.registry.Get(entry.Title)
		if res.err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			e.logger.Warn("dropping branch", "title", entry.Title, "error", res.err)
			e.notify(rec, nil)
			continue
		}

		e.logger.Debug("expanded page", "title", entry.Title, "parent", entry.Parent, "candidates", len(res.top))
		e.notify(rec, res.top)

		// Only the top candidates are inspected for the target
		for _, c := range res.top {
			if types.SameTitle(c.Title, e.cfg.Target) {
				e.registry.Visit(e.cfg.Target, entry.Title)
				e.foundAs = e.cfg.Target
				e.state = StateFound
				return nil
			}
		}

		for _, c := range res.top {
			if e.registry.Has(c.Title) {
				continue
			}
			e.frontier.Push(frontier.Entry{Title: c.Title, Parent: entry.Title, Score: c.Score})
		}
	}
}

// prefetch scores head and up to Workers-1 further unvisited titles at the
// front of the frontier concurrently. Results go into memo; the registry is
// never touched here.
func (e *Engine) prefetch(ctx context.Context, scorer *relevance.Scorer, profile relevance.Profile, head string, memo map[string]scored) {
	titles := []string{head}
	workers := e.workers()

	if workers > 1 {
		queued := map[string]struct{}{head: {}}
		for _, next := range e.frontier.Peek(workers * peekFactor) {
			if len(titles) >= workers {
				break
			}
			if _, dup := queued[next.Title]; dup {
				continue
			}
			if _, done := memo[next.Title]; done || e.registry.Has(next.Title) {
				continue
			}
			queued[next.Title] = struct{}{}
			titles = append(titles, next.Title)
		}
	}

	results := make([]scored, len(titles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, title := range titles {
		g.Go(func() error {
			top, err := scorer.TopCandidates(gctx, title, profile, e.cfg.NeighborsToCheck)
			results[i] = scored{top: top, err: err}
			return nil
		})
	}
	_ = g.Wait() // workers report through results

	for i, title := range titles {
		memo[title] = results[i]
	}
}

func (e *Engine) workers() int {
	if e.cfg.Workers <= 0 {
		return 1
	}
	return e.cfg.Workers
}

func (e *Engine) checkExists(ctx context.Context, title, role string) error {
	exists, err := e.source.PageExists(ctx, title)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("checking %s page %q: %w", role, title, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s page %q", types.ErrPageNotFound, role, title)
	}
	return nil
}

func (e *Engine) notify(rec types.PageRecord, top []types.Candidate) {
	if e.onVisit != nil {
		e.onVisit(rec, top)
	}
}

// Reset discards the registry, the adjacency list and the frontier
func (e *Engine) Reset() {
	e.registry.Reset()
	e.frontier = frontier.New(e.cfg.UseBFS)
	e.state = StateInit
	e.foundAs = ""
	e.budgetExceeded = false
}

// Result summarizes the last run
func (e *Engine) Result() *types.PathResult {
	path, found := e.TracePathBackwards()
	return &types.PathResult{
		Source:         e.cfg.Source,
		Target:         e.cfg.Target,
		Found:          found,
		Path:           path,
		VisitedCount:   e.registry.Len(),
		BudgetExceeded: e.budgetExceeded,
		Adjacency:      e.registry.Adjacency(),
	}
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	return e.state
}

// SourceTitle returns the configured source title
func (e *Engine) SourceTitle() string {
	return e.cfg.Source
}

// TargetTitle returns the configured target title
func (e *Engine) TargetTitle() string {
	return e.cfg.Target
}

// AdjacencyList returns a copy of the links accepted during the last run
func (e *Engine) AdjacencyList() map[string][]string {
	return e.registry.Adjacency()
}

// VisitedCount returns the number of accepted pages, target included
func (e *Engine) VisitedCount() int {
	return e.registry.Len()
}

// VisitedTitles returns accepted titles in acceptance order
func (e *Engine) VisitedTitles() []string {
	return e.registry.Titles()
}

// TracePathBackwards returns the path from source to target, or false when
// the last run did not reach the configured target
func (e *Engine) TracePathBackwards() ([]string, bool) {
	if e.state != StateFound || !types.SameTitle(e.foundAs, e.cfg.Target) {
		return nil, false
	}
	return TracePath(e.registry, e.foundAs)
}

// PathLength returns the number of links in the path, 0 without a path
func (e *Engine) PathLength() int {
	path, ok := e.TracePathBackwards()
	if !ok {
		return 0
	}
	return len(path) - 1
}

// Config returns the current options
func (e *Engine) Config() Config {
	return e.cfg
}

// WordUniqueness reports whether title words are weighted by rarity
func (e *Engine) WordUniqueness() bool {
	return e.cfg.WordUniqueness
}

// NeighborsToCheck returns the per expansion candidate limit
func (e *Engine) NeighborsToCheck() int {
	return e.cfg.NeighborsToCheck
}

// UseBFS reports whether the next run expands breadth first
func (e *Engine) UseBFS() bool {
	return e.cfg.UseBFS
}

// The setters below discard the last run, whose results no longer match
// the options.

// SetSource changes the source title for the next run
func (e *Engine) SetSource(title string) {
	e.cfg.Source = title
	e.Reset()
}

// SetTarget changes the target title for the next run
func (e *Engine) SetTarget(title string) {
	e.cfg.Target = title
	e.Reset()
}

// ToggleWordUniqueness flips rarity weighting for the next run
func (e *Engine) ToggleWordUniqueness() {
	e.cfg.WordUniqueness = !e.cfg.WordUniqueness
	e.Reset()
}

// SetNeighborsToCheck changes the per expansion candidate limit
func (e *Engine) SetNeighborsToCheck(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: neighbors to check must be positive, got %d", types.ErrConfiguration, n)
	}
	e.cfg.NeighborsToCheck = n
	e.Reset()
	return nil
}

// SetUseBFS selects breadth first or greedy search for the next run
func (e *Engine) SetUseBFS(bfs bool) {
	e.cfg.UseBFS = bfs
	e.Reset()
}
