package services

import (
	"context"
)

// WorkerPool bounds concurrent network-bound units with a buffered-channel
// semaphore. One pool is shared by all enrichment work of an aggregation to
// cap outbound fan-out against the upstream API
type WorkerPool struct {
	sem chan struct{}
}

// NewWorkerPool creates a pool with the given slot capacity
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{sem: make(chan struct{}, size)}
}

// Acquire blocks until a slot frees or the context is done. The returned
// release function must be called exactly once
func (p *WorkerPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}

// Size returns the pool's slot capacity
func (p *WorkerPool) Size() int {
	return cap(p.sem)
}
