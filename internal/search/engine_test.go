package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/wikipath-mcp/internal/pagesource"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flakySource fails Outlinks for chosen titles and can slow every call down
type flakySource struct {
	pagesource.Source
	failing map[string]bool
	delay   time.Duration
	calls   atomic.Int32
}

func (f *flakySource) Outlinks(ctx context.Context, title string) ([]string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failing[title] {
		return nil, fmt.Errorf("%w: connection reset", types.ErrPageFetch)
	}
	return f.Source.Outlinks(ctx, title)
}

// scenarioGraph is A->[B,C], B->[D], C->[] where the target text favors B
func scenarioGraph() *pagesource.Static {
	src := pagesource.NewStatic()
	src.AddPage("Alpha", "", "Bravo", "Charlie")
	src.AddPage("Bravo", "", "Delta")
	src.AddPage("Charlie", "")
	src.AddPage("Delta", "Bravo delta bravo")
	return src
}

func newEngine(src pagesource.Source, cfg Config) *Engine {
	return NewEngine(src, cfg, quietLogger())
}

func TestSearch_ScenarioBFS(t *testing.T) {
	engine := newEngine(scenarioGraph(), Config{
		Source:           "Alpha",
		Target:           "Delta",
		NeighborsToCheck: 2,
		UseBFS:           true,
	})

	result, err := engine.Search(context.Background())
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, []string{"Alpha", "Bravo", "Delta"}, result.Path)
	assert.Equal(t, 2, result.PathLength())
	assert.NoError(t, result.Validate())

	assert.Equal(t, StateFound, engine.State())
	assert.Equal(t, 2, engine.PathLength())
	assert.Equal(t, 3, engine.VisitedCount())
	assert.Equal(t, []string{"Alpha", "Bravo", "Delta"}, engine.VisitedTitles())
	assert.Equal(t, map[string][]string{
		"Alpha": {"Bravo"},
		"Bravo": {"Delta"},
		"Delta": {},
	}, engine.AdjacencyList())
}

func TestSearch_ScenarioGreedy(t *testing.T) {
	engine := newEngine(scenarioGraph(), Config{
		Source:           "Alpha",
		Target:           "Delta",
		NeighborsToCheck: 1,
		UseBFS:           false,
	})

	result, err := engine.Search(context.Background())
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, []string{"Alpha", "Bravo", "Delta"}, result.Path)

	path, ok := engine.TracePathBackwards()
	require.True(t, ok)
	assert.Equal(t, result.Path, path)
}

func TestSearch_Unreachable(t *testing.T) {
	src := pagesource.NewStatic()
	src.AddPage("Alpha", "", "Bravo")
	src.AddPage("Bravo", "", "Alpha")
	src.AddPage("Zulu", "Zulu alpha bravo")

	for _, bfs := range []bool{true, false} {
		t.Run(fmt.Sprintf("bfs=%v", bfs), func(t *testing.T) {
			engine := newEngine(src, Config{Source: "Alpha", Target: "Zulu", NeighborsToCheck: 3, UseBFS: bfs})

			result, err := engine.Search(context.Background())
			require.NoError(t, err)
			assert.False(t, result.Found)
			assert.Nil(t, result.Path)
			assert.Equal(t, 0, result.PathLength())
			assert.Equal(t, "None", result.String())

			assert.Equal(t, StateExhausted, engine.State())
			_, ok := engine.TracePathBackwards()
			assert.False(t, ok)
			assert.Equal(t, 0, engine.PathLength())
			assert.Equal(t, 2, engine.VisitedCount())
		})
	}
}

func TestSearch_CyclicGraphVisitsOnce(t *testing.T) {
	src := pagesource.NewStatic()
	src.AddPage("Alpha", "", "Bravo", "Charlie", "Alpha")
	src.AddPage("Bravo", "", "Alpha", "Charlie", "Bravo")
	src.AddPage("Charlie", "", "Alpha", "Bravo")
	src.AddPage("Island", "alpha bravo charlie")

	for _, bfs := range []bool{true, false} {
		engine := newEngine(src, Config{Source: "Alpha", Target: "Island", NeighborsToCheck: 5, UseBFS: bfs})

		var accepted []string
		engine.OnVisit(func(rec types.PageRecord, _ []types.Candidate) {
			accepted = append(accepted, rec.Title)
		})

		result, err := engine.Search(context.Background())
		require.NoError(t, err)
		assert.False(t, result.Found)

		seen := make(map[string]bool)
		for _, title := range accepted {
			assert.False(t, seen[title], "visited %s twice", title)
			seen[title] = true
		}
		assert.Len(t, accepted, 3)

		adjacency := engine.AdjacencyList()
		for _, title := range engine.VisitedTitles() {
			_, ok := adjacency[title]
			assert.True(t, ok, "no adjacency entry for %s", title)
		}
	}
}

// wideGraph has n pages with five outlinks each, some pointing at missing pages
func wideGraph(n int) *pagesource.Static {
	src := pagesource.NewStatic()
	for i := 0; i < n; i++ {
		links := []string{
			fmt.Sprintf("Page %d", (i*7+1)%n),
			fmt.Sprintf("Page %d", (i*3+2)%n),
			fmt.Sprintf("Page %d", (i+5)%n),
			fmt.Sprintf("Page %d", (i*11+3)%n),
		}
		if i%4 == 0 {
			links = append(links, fmt.Sprintf("Missing %d", i))
		}
		src.AddPage(fmt.Sprintf("Page %d", i), "", links...)
	}
	src.AddPage("Goal", "page 17 page 23 page 42 goal")
	return src
}

func TestSearch_BFSFanOutCap(t *testing.T) {
	const n = 2
	engine := newEngine(wideGraph(60), Config{Source: "Page 0", Target: "Goal", NeighborsToCheck: n, UseBFS: true})

	// Every frontier push of an expansion comes from its top candidates
	expansions := 0
	engine.OnVisit(func(rec types.PageRecord, top []types.Candidate) {
		expansions++
		assert.LessOrEqual(t, len(top), n, "%s offered %d candidates", rec.Title, len(top))
	})

	_, err := engine.Search(context.Background())
	require.NoError(t, err)
	assert.Greater(t, expansions, 1)

	for title, children := range engine.AdjacencyList() {
		assert.LessOrEqual(t, len(children), n, "%s has %d children", title, len(children))
	}
}

func TestSearch_WorkersDoNotChangeOutcome(t *testing.T) {
	for _, bfs := range []bool{true, false} {
		t.Run(fmt.Sprintf("bfs=%v", bfs), func(t *testing.T) {
			src := wideGraph(60)
			src.AddPage("Page 59", "", "Page 1", "Goal")

			base := Config{Source: "Page 0", Target: "Goal", NeighborsToCheck: 3, UseBFS: bfs, Workers: 1}
			sequential := newEngine(src, base)
			want, err := sequential.Search(context.Background())
			require.NoError(t, err)

			for _, workers := range []int{2, 4, 8} {
				cfg := base
				cfg.Workers = workers
				engine := newEngine(src, cfg)
				got, err := engine.Search(context.Background())
				require.NoError(t, err)

				assert.Equal(t, want.Found, got.Found)
				assert.Equal(t, want.Path, got.Path)
				assert.Equal(t, want.Adjacency, got.Adjacency)
				assert.Equal(t, sequential.VisitedTitles(), engine.VisitedTitles())
			}
		})
	}
}

func TestSearch_Deterministic(t *testing.T) {
	src := wideGraph(40)
	cfg := Config{Source: "Page 0", Target: "Goal", NeighborsToCheck: 2, WordUniqueness: true, Workers: 4}

	first, err := newEngine(src, cfg).Search(context.Background())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := newEngine(src, cfg).Search(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first.Path, again.Path)
		assert.Equal(t, first.Adjacency, again.Adjacency)
	}
}

func TestSearch_FailingBranchDropped(t *testing.T) {
	static := pagesource.NewStatic()
	static.AddPage("Start", "", "Target road", "Target lane", "Ghost target")
	static.AddPage("Target road", "", "Dead end")
	static.AddPage("Target lane", "", "Lane end")
	static.AddPage("Lane end", "", "Target")
	static.AddPage("Dead end", "")
	static.AddPage("Target", "target road lane")
	src := &flakySource{Source: static, failing: map[string]bool{"Target road": true}}

	engine := newEngine(src, Config{Source: "Start", Target: "Target", NeighborsToCheck: 3, UseBFS: true})
	var dropped []string
	engine.OnVisit(func(rec types.PageRecord, top []types.Candidate) {
		if top == nil {
			dropped = append(dropped, rec.Title)
		}
	})

	result, err := engine.Search(context.Background())
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, []string{"Start", "Target lane", "Lane end", "Target"}, result.Path)

	// Ghost target has no page and Target road fails to fetch
	assert.ElementsMatch(t, []string{"Target road", "Ghost target"}, dropped)
	adjacency := engine.AdjacencyList()
	assert.Empty(t, adjacency["Target road"])
	assert.NotContains(t, adjacency, "Dead end")
}

func TestSearch_TargetOutsideTopWindowNotDetected(t *testing.T) {
	src := pagesource.NewStatic()
	src.AddPage("Start", "", "Zebra", "Apple pie")
	src.AddPage("Apple pie", "")
	src.AddPage("Zebra", "apple apple apple")

	// Zebra is linked from Start but scores below Apple pie
	engine := newEngine(src, Config{Source: "Start", Target: "Zebra", NeighborsToCheck: 1})
	result, err := engine.Search(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, []string{"Start", "Apple pie"}, engine.VisitedTitles())

	require.NoError(t, engine.SetNeighborsToCheck(2))
	result, err = engine.Search(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, []string{"Start", "Zebra"}, result.Path)
}

func TestSearch_TargetMatchedIgnoringCase(t *testing.T) {
	src := pagesource.NewStatic()
	src.AddPage("Start", "", "Coffee")
	src.AddPage("Coffee", "coffee")
	src.AddPage("COFFEE", "coffee")

	engine := newEngine(src, Config{Source: "Start", Target: "COFFEE", NeighborsToCheck: 1})
	result, err := engine.Search(context.Background())
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, []string{"Start", "COFFEE"}, result.Path)
	assert.NoError(t, result.Validate())
}

func TestSearch_SourceIsTarget(t *testing.T) {
	src := scenarioGraph()
	src.AddPage("alpha", "")
	engine := newEngine(src, Config{Source: "Alpha", Target: "alpha", NeighborsToCheck: 2})

	result, err := engine.Search(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, []string{"Alpha"}, result.Path)
	assert.Equal(t, 0, result.PathLength())
	assert.Equal(t, 1, engine.VisitedCount())
}

func TestSearch_MissingEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
	}{
		{name: "missing source", source: "Nowhere", target: "Delta"},
		{name: "missing target", source: "Alpha", target: "Nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(scenarioGraph(), Config{Source: tt.source, Target: tt.target, NeighborsToCheck: 2})
			_, err := engine.Search(context.Background())
			assert.ErrorIs(t, err, types.ErrPageNotFound)
			assert.Equal(t, StateInit, engine.State())
			assert.Equal(t, 0, engine.VisitedCount())
		})
	}
}

func TestSearch_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero neighbors", cfg: Config{Source: "Alpha", Target: "Delta", NeighborsToCheck: 0}},
		{name: "negative neighbors", cfg: Config{Source: "Alpha", Target: "Delta", NeighborsToCheck: -1}},
		{name: "empty source", cfg: Config{Source: " ", Target: "Delta", NeighborsToCheck: 2}},
		{name: "empty target", cfg: Config{Source: "Alpha", NeighborsToCheck: 2}},
		{name: "negative budget", cfg: Config{Source: "Alpha", Target: "Delta", NeighborsToCheck: 2, MaxSteps: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &flakySource{Source: scenarioGraph()}
			_, err := newEngine(src, tt.cfg).Search(context.Background())
			assert.ErrorIs(t, err, types.ErrConfiguration)
			assert.Zero(t, src.calls.Load())
		})
	}
}

func TestSearch_CancellationDiscardsState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := newEngine(wideGraph(60), Config{Source: "Page 0", Target: "Goal", NeighborsToCheck: 3, Workers: 2})
	visits := 0
	engine.OnVisit(func(types.PageRecord, []types.Candidate) {
		visits++
		if visits == 3 {
			cancel()
		}
	})

	_, err := engine.Search(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateInit, engine.State())
	assert.Equal(t, 0, engine.VisitedCount())
	assert.Empty(t, engine.AdjacencyList())
	_, ok := engine.TracePathBackwards()
	assert.False(t, ok)
}

func TestSearch_Timeout(t *testing.T) {
	src := &flakySource{Source: wideGraph(60), delay: 20 * time.Millisecond}
	engine := newEngine(src, Config{
		Source:           "Page 0",
		Target:           "Goal",
		NeighborsToCheck: 3,
		Timeout:          50 * time.Millisecond,
	})

	_, err := engine.Search(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateInit, engine.State())
	assert.Equal(t, 0, engine.VisitedCount())
}

func TestSearch_StepBudget(t *testing.T) {
	engine := newEngine(wideGraph(60), Config{Source: "Page 0", Target: "Goal", NeighborsToCheck: 3, MaxSteps: 4})

	result, err := engine.Search(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.True(t, result.BudgetExceeded)
	assert.Equal(t, 4, result.VisitedCount)
	assert.Equal(t, StateExhausted, engine.State())
}

func TestSearch_RerunResetsState(t *testing.T) {
	engine := newEngine(scenarioGraph(), Config{Source: "Alpha", Target: "Delta", NeighborsToCheck: 2, UseBFS: true})

	first, err := engine.Search(context.Background())
	require.NoError(t, err)
	second, err := engine.Search(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, first.Adjacency, second.Adjacency)
	assert.Equal(t, 3, engine.VisitedCount())
}

func TestEngine_Setters(t *testing.T) {
	engine := newEngine(scenarioGraph(), DefaultConfig())
	assert.True(t, engine.WordUniqueness())
	assert.Equal(t, DefaultNeighborsToCheck, engine.NeighborsToCheck())
	assert.False(t, engine.UseBFS())

	engine.SetSource("Alpha")
	engine.SetTarget("Delta")
	engine.ToggleWordUniqueness()
	engine.SetUseBFS(true)
	require.NoError(t, engine.SetNeighborsToCheck(2))
	assert.ErrorIs(t, engine.SetNeighborsToCheck(0), types.ErrConfiguration)

	assert.Equal(t, "Alpha", engine.SourceTitle())
	assert.Equal(t, "Delta", engine.TargetTitle())
	assert.False(t, engine.WordUniqueness())
	assert.Equal(t, 2, engine.NeighborsToCheck())
	assert.True(t, engine.UseBFS())

	result, err := engine.Search(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Found)
}

func TestSearch_RejectedRunDiscardsPreviousResult(t *testing.T) {
	engine := newEngine(scenarioGraph(), Config{Source: "Alpha", Target: "Delta", NeighborsToCheck: 2, UseBFS: true})
	_, err := engine.Search(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateFound, engine.State())

	engine.cfg.NeighborsToCheck = 0
	_, err = engine.Search(context.Background())
	assert.ErrorIs(t, err, types.ErrConfiguration)

	assert.Equal(t, StateInit, engine.State())
	assert.Equal(t, 0, engine.VisitedCount())
	assert.Empty(t, engine.AdjacencyList())
	_, ok := engine.TracePathBackwards()
	assert.False(t, ok)
	assert.Equal(t, 0, engine.PathLength())
}

func TestEngine_SettersDiscardPreviousResult(t *testing.T) {
	tests := []struct {
		name   string
		change func(e *Engine)
	}{
		{name: "source", change: func(e *Engine) { e.SetSource("Bravo") }},
		{name: "target", change: func(e *Engine) { e.SetTarget("Charlie") }},
		{name: "word uniqueness", change: func(e *Engine) { e.ToggleWordUniqueness() }},
		{name: "bfs", change: func(e *Engine) { e.SetUseBFS(false) }},
		{name: "neighbors", change: func(e *Engine) { _ = e.SetNeighborsToCheck(3) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(scenarioGraph(), Config{Source: "Alpha", Target: "Delta", NeighborsToCheck: 2, UseBFS: true})
			_, err := engine.Search(context.Background())
			require.NoError(t, err)

			tt.change(engine)

			assert.Equal(t, StateInit, engine.State())
			assert.Equal(t, 0, engine.VisitedCount())
			path, ok := engine.TracePathBackwards()
			assert.False(t, ok)
			assert.Nil(t, path)
		})
	}
}

func TestEngine_Summary(t *testing.T) {
	engine := newEngine(scenarioGraph(), Config{Source: "Alpha", Target: "Delta", NeighborsToCheck: 2, UseBFS: true})
	_, err := engine.Search(context.Background())
	require.NoError(t, err)

	summary := engine.Summary()
	assert.Equal(t, StateFound, summary.State)
	assert.Equal(t, 2, summary.PathLength)
	assert.Equal(t, 3, summary.VisitedCount)

	out := summary.String()
	assert.Contains(t, out, "Alpha -> [Bravo]")
	assert.Contains(t, out, "Visited sites: [Alpha, Bravo, Delta]")
	assert.Contains(t, out, "Ordered Path: Alpha --> Bravo --> Delta")
	assert.Contains(t, out, "Path length = 2, Number of visited sites = 3")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "expanding", StateExpanding.String())
	assert.Equal(t, "found", StateFound.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "state(9)", State(9).String())
}
