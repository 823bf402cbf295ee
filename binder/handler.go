package binder

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Handler runs async layout tasks. Post must not block; it returns an error
// when the task cannot be accepted, and the binder then lays the item out
// synchronously instead.
type Handler interface {
	Post(task func()) error
}

// HandlerFactory picks a dedicated Handler for an item, or returns nil to
// use the binder's default pool.
type HandlerFactory interface {
	Handler(info RenderInfo) Handler
}

// HandlerFactoryFunc adapts a function to HandlerFactory.
type HandlerFactoryFunc func(info RenderInfo) Handler

func (f HandlerFactoryFunc) Handler(info RenderInfo) Handler { return f(info) }

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(task func()) error

func (f HandlerFunc) Post(task func()) error { return f(task) }

// queuePerWorker sizes the default pool's backlog.
const queuePerWorker = 64

// WorkerPool is a bounded Handler. A fixed set of workers drains a queue of
// posted tasks; Post fails with ErrHandlerSaturated only once the queue is
// full.
type WorkerPool struct {
	mu     sync.RWMutex
	tasks  chan func()
	g      errgroup.Group
	closed bool
}

// NewWorkerPool returns a pool of workers goroutines with a backlog of
// queuePerWorker tasks per worker.
func NewWorkerPool(workers int) *WorkerPool {
	return NewQueuedWorkerPool(workers, max(workers, 1)*queuePerWorker)
}

// NewQueuedWorkerPool returns a pool of workers goroutines accepting up to
// queue tasks beyond the ones running.
func NewQueuedWorkerPool(workers, queue int) *WorkerPool {
	workers = max(workers, 1)
	p := &WorkerPool{tasks: make(chan func(), max(queue, 0))}
	p.g.SetLimit(workers)
	for range workers {
		p.g.Go(p.drain)
	}
	return p
}

func (p *WorkerPool) drain() error {
	for task := range p.tasks {
		task()
	}
	return nil
}

func (p *WorkerPool) Post(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrHandlerClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrHandlerSaturated
	}
}

// Close stops accepting tasks, runs the queued ones and waits for the
// workers to exit.
func (p *WorkerPool) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	return p.g.Wait()
}
