package search

import "sync/atomic"

// RunLock refuses a second live crawl instead of queueing it.
// The zero value is unlocked.
type RunLock struct {
	state atomic.Int32 // 0 = idle, 1 = crawling
}

// TryAcquire takes the lock if no crawl is running
func (l *RunLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock.
// Must only be called by the goroutine that successfully acquired it.
func (l *RunLock) Release() {
	l.state.Store(0)
}

// Busy reports whether a crawl holds the lock
func (l *RunLock) Busy() bool {
	return l.state.Load() == 1
}
