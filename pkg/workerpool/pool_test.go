package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEveryTask(t *testing.T) {
	p := New(4, 8)

	var count atomic.Int64
	for i := 0; i < 100; i++ {
		require.NoError(t, p.SubmitWait(context.Background(), func() { count.Add(1) }))
	}
	p.Shutdown()

	assert.EqualValues(t, 100, count.Load())
}

func TestPoolReportsFull(t *testing.T) {
	p := New(1, 1)
	defer p.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	require.NoError(t, p.Submit(func() {}))
	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolFull)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.SubmitWait(ctx, func() {}), context.DeadlineExceeded)

	close(release)
}

func TestPoolSurvivesPanics(t *testing.T) {
	p := New(1, 2)

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(func() { panic("boom") }))
	require.NoError(t, p.Submit(func() { wg.Done() }))
	wg.Wait()
	p.Shutdown()
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	p := New(2, 2)
	p.Shutdown()
	p.Shutdown()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
	assert.ErrorIs(t, p.SubmitWait(context.Background(), func() {}), ErrPoolClosed)
}
