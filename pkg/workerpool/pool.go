// Package workerpool runs tasks on a fixed number of goroutines.
//
//	pool := workerpool.New(8, 16)
//	defer pool.Shutdown()
//	err := pool.Submit(func() { sendMail() })
//	if errors.Is(err, workerpool.ErrPoolFull) { ... }
package workerpool

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/heartscript/pkg/logger"
)

var (
	// ErrPoolFull is returned by Submit when every worker is busy and the
	// queue is at capacity.
	ErrPoolFull = errors.New("workerpool: pool is full")
	// ErrPoolClosed is returned after Shutdown.
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Pool is a bounded goroutine pool. A panicking task is logged and does not
// take its worker down.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts size workers with room for queue waiting tasks.
func New(size, queue int) *Pool {
	if size <= 0 {
		size = 1
	}
	if queue < 0 {
		queue = 0
	}
	p := &Pool{tasks: make(chan func(), queue)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit queues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait queues task, blocking until there is room or ctx is done.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. It is
// safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		run(task)
	}
}

func run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", r)
		}
	}()
	task()
}
