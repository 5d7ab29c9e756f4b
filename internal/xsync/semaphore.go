// Package xsync implements the synchronization helpers used by the corpus loader.
package xsync

import "sync"

// Semaphore bounds how many goroutines hold a resource at once, and allows dynamic
// resizing of that bound.
//
// It uses a sync.Cond to support resizing, so it is slower than a fixed-capacity channel
// semaphore. That doesn't matter for coarse resource control like bounding parallel
// downloads.
type Semaphore struct {
	cond              sync.Cond
	capacity, current int
}

// NewSemaphore returns a Semaphore that allows at most capacity simultaneous acquisitions.
// If capacity <= 0, there is no limit on acquisitions.
//
// FIFO ordering may be lost when resizing (Semaphore.Resize) to a larger capacity, but
// otherwise it is respected.
func NewSemaphore(capacity int) *Semaphore {
	return &Semaphore{
		cond:     sync.Cond{L: &sync.Mutex{}},
		capacity: capacity,
	}
}

// Acquire a slot, blocking while the semaphore is at capacity.
// It must be matched by exactly one call to Semaphore.Release when the slot is no longer
// needed.
func (s *Semaphore) Acquire() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	for {
		if s.capacity <= 0 || s.current < s.capacity {
			s.current++
			return
		}
		s.cond.Wait()
	}
}

// Release a slot previously taken with Semaphore.Acquire.
func (s *Semaphore) Release() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.current--
	s.cond.Signal()
}

// Resize the number of slots in the Semaphore.
//
// Growing may immediately release pending Semaphore.Acquire calls; since all waiters are
// awoken at once (broadcast), the queue order may be lost. Shrinking has no effect on slots
// already acquired, so goroutines currently holding the semaphore keep running.
func (s *Semaphore) Resize(newCapacity int) {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	if newCapacity == s.capacity {
		return
	}
	if (newCapacity > 0 && newCapacity < s.capacity) || s.capacity == 0 {
		// Shrinking: no waiter can be released.
		s.capacity = newCapacity
		return
	}
	s.capacity = newCapacity
	s.cond.Broadcast()
}
