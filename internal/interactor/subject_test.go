package interactor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no value received")
	}
	var zero T
	return zero
}

func assertQuiet[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubjectRestartsOnDistinctParams(t *testing.T) {
	var mu sync.Mutex
	starts := map[string]int{}

	s := NewSubject[string, string](func(_ context.Context, p string) <-chan string {
		mu.Lock()
		starts[p]++
		mu.Unlock()
		return Single("page:" + p)
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := s.Flow(ctx)

	s.Invoke("a")
	assert.Equal(t, "page:a", next(t, out))

	s.Invoke("a")
	assertQuiet(t, out)

	s.Invoke("b")
	assert.Equal(t, "page:b", next(t, out))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, starts)
}

func TestSubjectCancelsPreviousInnerStream(t *testing.T) {
	cancelled := make(chan string, 4)

	s := NewSubject[int, int](func(ctx context.Context, p int) <-chan int {
		ch := make(chan int)
		go func() {
			defer close(ch)
			for i := 0; ; i++ {
				select {
				case ch <- p*100 + i:
				case <-ctx.Done():
					cancelled <- "stopped"
					return
				}
			}
		}()
		return ch
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := s.Flow(ctx)

	s.Invoke(1)
	assert.Equal(t, 100, next(t, out))

	s.Invoke(2)
	assert.Equal(t, "stopped", next(t, cancelled))

	for {
		v := next(t, out)
		if v >= 200 {
			break
		}
	}
}

func TestSubjectReplaysLatestToLateSubscriber(t *testing.T) {
	s := NewSubject[int, int](func(_ context.Context, p int) <-chan int {
		return Single(p)
	}, nil)

	s.Invoke(1)
	s.Invoke(2)
	s.Invoke(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := s.Flow(ctx)

	assert.Equal(t, 3, next(t, out))
	assertQuiet(t, out)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 3, latest)
}

func TestSubjectSuppressesEqualOutputs(t *testing.T) {
	s := NewSubject[string, int](func(_ context.Context, p string) <-chan int {
		return Single(len(p))
	}, func(a, b int) bool { return a == b })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := s.Flow(ctx)

	s.Invoke("ab")
	assert.Equal(t, 2, next(t, out))

	s.Invoke("cd")
	assertQuiet(t, out)

	s.Invoke("xyz")
	assert.Equal(t, 3, next(t, out))
}

func TestSubjectFlowClosesWithContext(t *testing.T) {
	s := NewSubject[int, int](func(_ context.Context, p int) <-chan int { return Single(p) }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	out := s.Flow(ctx)
	cancel()

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("flow not closed")
	}
}

func TestSubjectUpdatesCarryParams(t *testing.T) {
	s := NewSubject[string, int](func(_ context.Context, p string) <-chan int { return Single(len(p)) }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := s.Updates(ctx)

	s.Invoke("ab")
	assert.Equal(t, Emission[string, int]{Params: "ab", Value: 2}, next(t, updates))

	s.Invoke("abcd")
	assert.Equal(t, Emission[string, int]{Params: "abcd", Value: 4}, next(t, updates))
}

func TestSubjectUpdatesDeliverLatestToSlowReader(t *testing.T) {
	s := NewSubject[string, int](func(_ context.Context, _ string) <-chan int {
		ch := make(chan int, 3)
		ch <- 1
		ch <- 2
		ch <- 3
		close(ch)
		return ch
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := s.Updates(ctx)
	s.Invoke("p")

	// let the inner stream run ahead of the reader
	time.Sleep(50 * time.Millisecond)

	e := next(t, updates)
	assert.Equal(t, "p", e.Params)
	assert.Equal(t, 3, e.Value)
	assertQuiet(t, updates)
}
