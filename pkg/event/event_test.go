package event

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/shashiranjanraj/heartscript/pkg/workerpool"
	"github.com/stretchr/testify/assert"
)

func TestFireReachesEveryListenerInOrder(t *testing.T) {
	b := New()
	var got []string
	b.Listen("order.submitted", func(_ context.Context, p interface{}) { got = append(got, "a:"+p.(string)) })
	b.Listen("order.submitted", func(_ context.Context, p interface{}) { got = append(got, "b:"+p.(string)) })
	b.Listen("other", func(context.Context, interface{}) { got = append(got, "other") })

	b.Fire(context.Background(), "order.submitted", "1")
	assert.Equal(t, []string{"a:1", "b:1"}, got)
}

func TestFireAsyncSurvivesPanickingListener(t *testing.T) {
	b := New()
	var calls atomic.Int32
	b.Listen("x", func(context.Context, interface{}) { panic("boom") })
	b.Listen("x", func(context.Context, interface{}) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	b.FireAsync(ctx, "x", nil)
	cancel()
	b.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestFlush(t *testing.T) {
	b := New()
	called := false
	b.Listen("x", func(context.Context, interface{}) { called = true })
	b.Flush()
	b.Fire(context.Background(), "x", nil)
	assert.False(t, called)
}

func TestFireAsyncOnPool(t *testing.T) {
	pool := workerpool.New(2, 1)
	b := New().WithPool(pool)
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		b.Listen("x", func(context.Context, interface{}) { calls.Add(1) })
	}

	for i := 0; i < 5; i++ {
		b.FireAsync(context.Background(), "x", nil)
	}
	b.Wait()
	assert.EqualValues(t, 15, calls.Load())

	pool.Shutdown()
	b.FireAsync(context.Background(), "x", nil)
	b.Wait()
	assert.EqualValues(t, 18, calls.Load())
}
