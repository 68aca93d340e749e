package types

import "errors"

// Domain errors shared by the page sources, the scorer and the search engine
var (
	// ErrPageNotFound is returned when a title does not resolve to a page
	ErrPageNotFound = errors.New("page not found")
	// ErrPageFetch is returned for transient failures while fetching a page
	ErrPageFetch = errors.New("page fetch failed")
	// ErrConfiguration is returned when a search is configured with invalid options
	ErrConfiguration = errors.New("invalid search configuration")

	// Path result errors
	ErrEmptyPath       = errors.New("path cannot be empty")
	ErrPathEndpoints   = errors.New("path must start at the source and end at the target")
	ErrNegativeVisited = errors.New("visited count must be >= 0")
)

// IsBranchError reports whether err only invalidates a single crawl branch.
// Both missing intermediate pages and transient fetch failures qualify.
func IsBranchError(err error) bool {
	return errors.Is(err, ErrPageNotFound) || errors.Is(err, ErrPageFetch)
}
