package types

import (
	"strings"
	"time"
)

// PathResult summarizes a finished search run
type PathResult struct {
	// Endpoints
	Source string
	Target string

	// Outcome
	Found          bool
	Path           []string // Source first, target last; nil when not found
	VisitedCount   int
	BudgetExceeded bool // Search stopped by the step budget
	Duration       time.Duration

	// Traversal
	Adjacency map[string][]string
}

// PathLength returns the number of hops in the path, or 0 when no path exists
func (r *PathResult) PathLength() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}

// Validate checks if the path result is consistent
func (r *PathResult) Validate() error {
	if r.VisitedCount < 0 {
		return ErrNegativeVisited
	}

	if !r.Found {
		return nil
	}

	if len(r.Path) == 0 {
		return ErrEmptyPath
	}

	if r.Path[0] != r.Source || !SameTitle(r.Path[len(r.Path)-1], r.Target) {
		return ErrPathEndpoints
	}

	return nil
}

// String renders the path as "A --> B --> C", or "None" without a path
func (r *PathResult) String() string {
	if len(r.Path) == 0 {
		return "None"
	}
	return strings.Join(r.Path, " --> ")
}
