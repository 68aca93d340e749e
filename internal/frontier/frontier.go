// Package frontier holds the titles a search has discovered but not expanded.
//
// FIFO gives breadth first order. Priority always yields the best scored entry,
// ties broken by title and then parent so runs are reproducible.
package frontier

import "container/heap"

// Entry is a discovered title waiting for expansion
type Entry struct {
	Title  string
	Parent string
	Score  float64
}

// Frontier is the ordering strategy of a search
type Frontier interface {
	Push(e Entry)
	// Pop removes the next entry; ok is false when empty
	Pop() (e Entry, ok bool)
	// Peek returns up to n entries in the order Pop would return them
	Peek(n int) []Entry
	Len() int
	Reset()
}

// New returns a FIFO frontier for breadth first search, a Priority one otherwise
func New(bfs bool) Frontier {
	if bfs {
		return NewFIFO()
	}
	return NewPriority()
}

// FIFO is a first-in first-out queue
type FIFO struct {
	entries []Entry
	head    int
}

// NewFIFO creates an empty queue
func NewFIFO() *FIFO {
	return &FIFO{}
}

func (q *FIFO) Push(e Entry) {
	q.entries = append(q.entries, e)
}

func (q *FIFO) Pop() (Entry, bool) {
	if q.head >= len(q.entries) {
		return Entry{}, false
	}
	e := q.entries[q.head]
	q.entries[q.head] = Entry{}
	q.head++

	// Reclaim the consumed prefix once it dominates the slice
	if q.head > 64 && q.head*2 > len(q.entries) {
		q.entries = append([]Entry(nil), q.entries[q.head:]...)
		q.head = 0
	}
	return e, true
}

func (q *FIFO) Peek(n int) []Entry {
	if n > q.Len() {
		n = q.Len()
	}
	if n <= 0 {
		return nil
	}
	out := make([]Entry, n)
	copy(out, q.entries[q.head:q.head+n])
	return out
}

func (q *FIFO) Len() int {
	return len(q.entries) - q.head
}

func (q *FIFO) Reset() {
	q.entries = nil
	q.head = 0
}

// Priority is a max-heap on score
type Priority struct {
	h entryHeap
}

// NewPriority creates an empty priority frontier
func NewPriority() *Priority {
	return &Priority{}
}

func (p *Priority) Push(e Entry) {
	heap.Push(&p.h, e)
}

func (p *Priority) Pop() (Entry, bool) {
	if p.h.Len() == 0 {
		return Entry{}, false
	}
	return heap.Pop(&p.h).(Entry), true
}

// Peek copies the heap and pops from the copy, O(len + n log len)
func (p *Priority) Peek(n int) []Entry {
	if n > p.h.Len() {
		n = p.h.Len()
	}
	if n <= 0 {
		return nil
	}
	scratch := make(entryHeap, len(p.h))
	copy(scratch, p.h)

	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, heap.Pop(&scratch).(Entry))
	}
	return out
}

func (p *Priority) Len() int {
	return p.h.Len()
}

func (p *Priority) Reset() {
	p.h = nil
}

// before reports whether a is expanded ahead of b
func before(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.Parent < b.Parent
}

type entryHeap []Entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return before(h[i], h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(Entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
