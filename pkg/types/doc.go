// Package types provides shared type definitions for wikipath.
//
// This package defines the domain types used across the page sources, the
// relevance scorer, the search engine and the MCP server.
//
// # Core Types
//
// PageRecord is created for every title the search accepts. The parent
// pointer is what the path reconstruction walks backwards:
//
//	rec := types.PageRecord{Title: "Coffee", Parent: "Starbucks"}
//
// Candidate is a scored outbound link produced while expanding a page:
//
//	c := types.Candidate{Title: "Strawberry", Score: 12.5}
//
// # Errors
//
// ErrPageNotFound, ErrPageFetch and ErrConfiguration are sentinel errors.
// Callers wrap them with fmt.Errorf and test them with errors.Is:
//
//	if types.IsBranchError(err) {
//	    // drop this branch of the crawl and continue
//	}
//
// # Titles
//
// Titles are stored verbatim. Only the comparison against the target title
// ignores case, see SameTitle.
package types
