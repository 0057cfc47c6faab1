package dao

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no value received")
	}
	var zero T
	return zero
}

// sessionReads returns a reader that reports a live session until expired is
// set.
func sessionReads(expired *atomic.Bool) func(context.Context) string {
	return func(context.Context) string {
		if expired.Load() {
			return ""
		}
		return "u1"
	}
}

func TestPumpRereadsWhenRecheckIsDue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var expired atomic.Bool
	var checks atomic.Int32
	recheck := func(context.Context) (time.Duration, bool) {
		if checks.Add(1) == 1 {
			return 20 * time.Millisecond, true
		}
		return 0, false
	}

	out := pump(ctx, make(chan struct{}), sessionReads(&expired), recheck, func() {})
	assert.Equal(t, "u1", receive(t, out))

	expired.Store(true)
	assert.Equal(t, "", receive(t, out))

	select {
	case v := <-out:
		t.Fatalf("unexpected value %q", v)
	case <-time.After(60 * time.Millisecond):
	}
	assert.Equal(t, int32(2), checks.Load())
}

func TestPumpRereadsOnMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var expired atomic.Bool
	messages := make(chan struct{})
	out := pump(ctx, messages, sessionReads(&expired), nil, func() {})
	assert.Equal(t, "u1", receive(t, out))

	expired.Store(true)
	messages <- struct{}{}
	assert.Equal(t, "", receive(t, out))
}

func TestPumpStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	var expired atomic.Bool
	out := pump(ctx, make(chan struct{}), sessionReads(&expired), nil, func() { close(done) })
	assert.Equal(t, "u1", receive(t, out))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
	_, ok := <-out
	assert.False(t, ok)
}

func TestRecheckAfter(t *testing.T) {
	testCases := []struct {
		name   string
		ttl    time.Duration
		want   time.Duration
		wantOK bool
	}{
		{"live session", time.Minute, time.Minute + expiryGrace, true},
		{"no expiry", -1, 0, false},
		{"missing key", -2, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := recheckAfter(tc.ttl)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
