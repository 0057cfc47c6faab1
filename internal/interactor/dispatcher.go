package interactor

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Dispatcher runs background work with bounded concurrency.
type Dispatcher struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func NewDispatcher(workers int64) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{sem: semaphore.NewWeighted(workers)}
}

// Submit schedules fn once a worker slot is free. It never blocks the caller.
// If ctx ends before a slot is acquired, rejected is called instead of fn.
func (d *Dispatcher) Submit(ctx context.Context, fn func(), rejected func(error)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.sem.Acquire(ctx, 1); err != nil {
			if rejected != nil {
				rejected(err)
			}
			return
		}
		defer d.sem.Release(1)
		fn()
	}()
}

// Wait blocks until all submitted work has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
