// Package schedule runs periodic maintenance tasks in the background.
//
//	s := schedule.New()
//	s.Every(10).Minutes().Name("sessions:sweep").Run(sweep)
//	s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/heartscript/pkg/logger"
)

// Task is one scheduled job. It receives the scheduler's context.
type Task func(ctx context.Context)

type entry struct {
	name     string
	interval time.Duration
	task     Task

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler dispatches due entries on every tick. An entry never overlaps
// its own previous run.
type Scheduler struct {
	tick time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{tick: time.Second, now: time.Now}
}

// Builder configures one entry before Run registers it.
type Builder struct {
	s *Scheduler
	e *entry
}

type freq struct {
	s *Scheduler
	n int
}

// Every starts a builder for n units.
func (s *Scheduler) Every(n int) freq { return freq{s: s, n: n} }

func (f freq) Seconds() *Builder { return f.interval(time.Second) }
func (f freq) Minutes() *Builder { return f.interval(time.Minute) }
func (f freq) Hours() *Builder   { return f.interval(time.Hour) }

func (f freq) interval(unit time.Duration) *Builder {
	return &Builder{s: f.s, e: &entry{interval: time.Duration(f.n) * unit}}
}

// Interval schedules at an arbitrary period.
func (s *Scheduler) Interval(d time.Duration) *Builder {
	return &Builder{s: s, e: &entry{interval: d}}
}

// Name labels the entry in logs and List.
func (b *Builder) Name(name string) *Builder {
	b.e.name = name
	return b
}

// Run registers task.
func (b *Builder) Run(task Task) {
	b.e.task = task
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.name == "" {
		b.e.name = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
}

// Start runs the dispatch loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
	logger.Info("schedule: started", "tasks", len(s.List()))
}

// Wait blocks until every dispatched run has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: stopped")
			return
		case <-ticker.C:
			s.dispatchDue(ctx)
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context) {
	s.mu.Lock()
	current := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	now := s.now()
	for _, e := range current {
		e.mu.Lock()
		due := !e.running && (e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval)
		if due {
			e.running = true
			e.lastRun = now
		}
		e.mu.Unlock()
		if due {
			s.wg.Add(1)
			go s.run(ctx, e)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, e *entry) {
	defer s.wg.Done()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		if r := recover(); r != nil {
			logger.Error("schedule: task panicked", "task", e.name, "panic", r)
		}
	}()
	logger.Debug("schedule: running", "task", e.name)
	e.task(ctx)
}

// List describes every entry as "name [interval]".
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.name, e.interval))
	}
	return out
}
