package utils

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolStopped is returned when work is submitted to a stopped pool
var ErrPoolStopped = errors.New("worker pool is not running")

// WorkerPool runs submitted work on a fixed number of goroutines.
// Used for image work that would otherwise block a request or module start.
type WorkerPool struct {
	workers int
	queue   chan func()
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewWorkerPool creates a pool with the given number of workers.
// The queue is buffered at 2x the worker count.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{workers: workers}
}

// Start launches the workers. Calling it on a running pool has no effect.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return
	}
	wp.running = true
	wp.queue = make(chan func(), wp.workers*2)

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(wp.queue)
	}
}

// Stop closes the queue and blocks until every queued item has run
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if !wp.running {
		wp.mu.Unlock()
		return
	}
	wp.running = false
	close(wp.queue)
	wp.mu.Unlock()

	wp.wg.Wait()
}

// Submit queues work without blocking. It returns false when the queue
// is full or the pool is stopped.
func (wp *WorkerPool) Submit(work func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if !wp.running {
		return false
	}
	select {
	case wp.queue <- work:
		return true
	default:
		return false
	}
}

// SubmitWait queues work, waiting for room until ctx is done
func (wp *WorkerPool) SubmitWait(ctx context.Context, work func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if !wp.running {
		return ErrPoolStopped
	}
	select {
	case wp.queue <- work:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (wp *WorkerPool) worker(queue <-chan func()) {
	defer wp.wg.Done()
	for work := range queue {
		if work != nil {
			work()
		}
	}
}
