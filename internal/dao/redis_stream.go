package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Recheck reports how long to wait before reading an observed value again
// without a message, or false to wait for messages only.
type Recheck func(ctx context.Context) (time.Duration, bool)

// observeChannel emits read's value once, then again after every message on
// channel and whenever recheck asks for it, until ctx ends. recheck may be
// nil.
func observeChannel[T any](ctx context.Context, client *redis.Client, channel string, read func(context.Context) T, recheck Recheck) (<-chan T, error) {
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return pump(ctx, pubsub.Channel(), read, recheck, func() { pubsub.Close() }), nil
}

// pump drives one observed value from a message stream. done runs after the
// output channel is closed.
func pump[T, M any](ctx context.Context, messages <-chan M, read func(context.Context) T, recheck Recheck, done func()) <-chan T {
	out := make(chan T, 1)
	go func() {
		defer done()
		defer close(out)

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		var wake <-chan time.Time

		emit := func() bool {
			select {
			case out <- read(ctx):
			case <-ctx.Done():
				return false
			}
			if recheck == nil {
				return true
			}
			if timer != nil {
				timer.Stop()
			}
			timer, wake = nil, nil
			if d, ok := recheck(ctx); ok {
				timer = time.NewTimer(d)
				wake = timer.C
			}
			return true
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok || !emit() {
					return
				}
			case <-wake:
				if !emit() {
					return
				}
			}
		}
	}()
	return out
}
