package xsync

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSemaphoreBoundsConcurrency(t *testing.T) {
	const capacity = 3
	const workers = 20

	sem := NewSemaphore(capacity)
	var current, peak atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			sem.Acquire()
			defer sem.Release()
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			current.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(capacity))
}

func TestSemaphoreUnlimited(t *testing.T) {
	sem := NewSemaphore(0)
	var wg sync.WaitGroup
	wg.Add(10)
	for range 10 {
		go func() {
			defer wg.Done()
			sem.Acquire()
			sem.Release()
		}()
	}
	wg.Wait()
}

func TestSemaphoreResizeReleasesWaiters(t *testing.T) {
	sem := NewSemaphore(1)
	sem.Acquire()

	done := make(chan struct{})
	go func() {
		sem.Acquire()
		defer sem.Release()
		close(done)
	}()

	// The waiter is blocked behind capacity 1; growing the semaphore must let it through
	// without the first slot being released.
	sem.Resize(2)
	<-done
	sem.Release()
}
