package search

import (
	"fmt"
	"strings"
)

// Summary describes the last run for display
type Summary struct {
	Source       string
	Target       string
	State        State
	Visited      []string
	Adjacency    map[string][]string
	Path         []string
	PathLength   int
	VisitedCount int
}

// Summary collects the outputs of the last run
func (e *Engine) Summary() Summary {
	path, _ := e.TracePathBackwards()
	return Summary{
		Source:       e.cfg.Source,
		Target:       e.cfg.Target,
		State:        e.state,
		Visited:      e.registry.Titles(),
		Adjacency:    e.registry.Adjacency(),
		Path:         path,
		PathLength:   e.PathLength(),
		VisitedCount: e.registry.Len(),
	}
}

// String renders the summary. Adjacency entries follow visit order.
func (s Summary) String() string {
	var b strings.Builder

	b.WriteString("Adjacency list:\n")
	for _, title := range s.Visited {
		fmt.Fprintf(&b, "  %s -> [%s]\n", title, strings.Join(s.Adjacency[title], ", "))
	}

	fmt.Fprintf(&b, "Visited sites: [%s]\n", strings.Join(s.Visited, ", "))

	b.WriteString("Ordered Path: ")
	if len(s.Path) == 0 {
		b.WriteString("None\n")
	} else {
		b.WriteString(strings.Join(s.Path, " --> "))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Path length = %d, Number of visited sites = %d\n", s.PathLength, s.VisitedCount)
	return b.String()
}
