// Package event provides an in-process event dispatcher.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/workerpool"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload interface{})

// Bus routes named events to their listeners.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	pool     *workerpool.Pool
}

func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// WithPool runs async listeners on pool instead of one goroutine each.
func (b *Bus) WithPool(pool *workerpool.Pool) *Bus {
	b.pool = pool
	return b
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

func (b *Bus) listeners(event string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[event]...)
}

// Fire dispatches synchronously to all listeners.
func (b *Bus) Fire(ctx context.Context, event string, payload interface{}) {
	for _, h := range b.listeners(event) {
		b.call(ctx, event, h, payload)
	}
}

// FireAsync dispatches to every listener off the caller's goroutine.
// Listeners get a context detached from the caller's cancellation. With a
// pool, a full queue makes the caller wait for room; a closed pool runs the
// listener inline.
func (b *Bus) FireAsync(ctx context.Context, event string, payload interface{}) {
	detached := context.WithoutCancel(ctx)
	for _, h := range b.listeners(event) {
		h := h
		b.wg.Add(1)
		task := func() {
			defer b.wg.Done()
			b.call(detached, event, h, payload)
		}
		if b.pool == nil {
			go task()
			continue
		}
		err := b.pool.Submit(task)
		if errors.Is(err, workerpool.ErrPoolFull) {
			err = b.pool.SubmitWait(ctx, task)
		}
		if err != nil {
			logger.WithCtx(ctx).Warn("event: pool unavailable, running inline", "event", event, "error", err)
			task()
		}
	}
}

// Wait blocks until every FireAsync listener has returned.
func (b *Bus) Wait() { b.wg.Wait() }

func (b *Bus) call(ctx context.Context, event string, h Handler, payload interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", event, "panic", rec)
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}
