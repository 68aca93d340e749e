package search

import "github.com/dshills/wikipath-mcp/pkg/types"

// Registry records the pages a search has accepted and the adjacency list
// built while accepting them. It is owned by a single Engine.
type Registry struct {
	records   map[string]types.PageRecord
	order     []string
	adjacency map[string][]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		records:   make(map[string]types.PageRecord),
		adjacency: make(map[string][]string),
	}
}

// Visit accepts title with the given parent. The record, the empty adjacency
// entry and the edge from the parent are created together. Returns false,
// changing nothing, when title was already accepted.
func (r *Registry) Visit(title, parent string) bool {
	if _, ok := r.records[title]; ok {
		return false
	}

	r.records[title] = types.PageRecord{Title: title, Parent: parent}
	r.order = append(r.order, title)
	if _, ok := r.adjacency[title]; !ok {
		r.adjacency[title] = []string{}
	}
	if parent != "" {
		r.adjacency[parent] = append(r.adjacency[parent], title)
	}
	return true
}

// Has reports whether title was accepted
func (r *Registry) Has(title string) bool {
	_, ok := r.records[title]
	return ok
}

// Get returns the record of title
func (r *Registry) Get(title string) (types.PageRecord, bool) {
	rec, ok := r.records[title]
	return rec, ok
}

// Len returns the number of accepted pages
func (r *Registry) Len() int {
	return len(r.records)
}

// Titles returns accepted titles in acceptance order
func (r *Registry) Titles() []string {
	titles := make([]string, len(r.order))
	copy(titles, r.order)
	return titles
}

// Adjacency returns a deep copy of the adjacency list
func (r *Registry) Adjacency() map[string][]string {
	out := make(map[string][]string, len(r.adjacency))
	for title, links := range r.adjacency {
		linksCopy := make([]string, len(links))
		copy(linksCopy, links)
		out[title] = linksCopy
	}
	return out
}

// Reset forgets every record
func (r *Registry) Reset() {
	r.records = make(map[string]types.PageRecord)
	r.order = nil
	r.adjacency = make(map[string][]string)
}
