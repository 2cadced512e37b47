package worker

import (
	"context"
	"errors"
)

// ErrPoolClosed is returned once Close has been called.
var ErrPoolClosed = errors.New("hash pool closed")

// HashPool bounds the number of password hash computations running at once and
// runs them off the calling goroutine, so a burst of logins cannot starve the
// rest of the server of CPU and memory.
type HashPool struct {
	slots chan struct{}
	done  chan struct{}
}

// NewHashPool creates a pool with size concurrent slots.
func NewHashPool(size int) *HashPool {
	if size <= 0 {
		size = 1
	}
	return &HashPool{
		slots: make(chan struct{}, size),
		done:  make(chan struct{}),
	}
}

// Run waits for a free slot and executes fn on its own goroutine. If ctx ends
// first Run returns ctx.Err(); a job already started still finishes and frees
// its slot, but its result is dropped.
func (p *HashPool) Run(ctx context.Context, fn func() error) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.slots <- struct{}{}:
	}

	result := make(chan error, 1)
	go func() {
		defer func() { <-p.slots }()
		result <- fn()
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new jobs. Jobs already running are not interrupted.
func (p *HashPool) Close() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}
