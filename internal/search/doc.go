// Package search finds a chain of links between two pages of a lazily fetched
// link graph.
//
// The Engine pops a title from its frontier, accepts it into the Registry,
// asks the relevance scorer for the best NeighborsToCheck outlinks and pushes
// the ones not yet accepted. The run ends when the target shows up among
// those top candidates (StateFound) or the frontier runs dry
// (StateExhausted). Only the top window is checked for the target, so a page
// that links to the target with a poorly scored title does not end the run.
//
// Two frontier disciplines are available:
//
//   - BFS: first in first out, each page contributes at most NeighborsToCheck
//     children.
//   - Greedy (default): the best scored candidate anywhere in the frontier is
//     expanded next.
//
// Fetching and scoring dominate a run, so the engine scores up to Workers
// titles at the head of the frontier concurrently. Accepting pages stays on
// the calling goroutine in frontier order, which keeps runs reproducible for
// any worker count.
//
// Failures on intermediate pages drop that branch only. A missing source or
// target, an invalid Config and a cancelled context fail the run; on
// cancellation all state is discarded and the engine is back in StateInit.
//
// Usage:
//
//	engine := search.NewEngine(src, search.Config{
//	    Source:           "Starbucks",
//	    Target:           "Strawberry",
//	    WordUniqueness:   true,
//	    NeighborsToCheck: 5,
//	}, logger)
//	result, err := engine.Search(ctx)
//	fmt.Println(result) // Starbucks --> ... --> Strawberry
package search
