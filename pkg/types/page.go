package types

import "strings"

// PageRecord is created when a title is accepted by the search.
// An empty Parent marks the source page.
type PageRecord struct {
	Title  string
	Parent string
}

// IsSource returns true if the record was the starting point of the search
func (r PageRecord) IsSource() bool {
	return r.Parent == ""
}

// Candidate is an outbound link of the page being expanded, scored against
// the target profile. Scores are only meaningful within one expansion step.
type Candidate struct {
	Title string
	Score float64
}

// SameTitle compares two titles ignoring case. Titles are stored verbatim and
// only compared this way when matching against the target.
func SameTitle(a, b string) bool {
	return strings.EqualFold(a, b)
}

// NormalizeTitle trims surrounding whitespace and converts underscores to
// spaces, which is how MediaWiki titles appear in URLs.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
}
