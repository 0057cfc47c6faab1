package interactor

import (
	"context"
	"sync"
)

// Source builds the inner stream for one parameter value. The stream must
// stop sending once ctx is done.
type Source[P, T any] func(ctx context.Context, params P) <-chan T

// Subject is a use case driven by a stream of parameter updates. Only the
// latest parameters are kept; every subscriber restarts its inner stream
// when they change and the previous stream is cancelled.
type Subject[P comparable, T any] struct {
	source Source[P, T]
	equal  func(a, b T) bool

	mu     sync.Mutex
	latest P
	has    bool
	subs   map[chan struct{}]struct{}
}

// NewSubject creates a subject. When equal is not nil, consecutive outputs
// it reports as equal are delivered once.
func NewSubject[P comparable, T any](source Source[P, T], equal func(a, b T) bool) *Subject[P, T] {
	return &Subject[P, T]{
		source: source,
		equal:  equal,
		subs:   make(map[chan struct{}]struct{}),
	}
}

// Invoke publishes new parameters. It never blocks; a pending older value is
// replaced.
func (s *Subject[P, T]) Invoke(params P) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = params
	s.has = true
	for notify := range s.subs {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
}

// Latest returns the most recent parameters, if any.
func (s *Subject[P, T]) Latest() (P, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.has
}

func (s *Subject[P, T]) subscribe() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	notify := make(chan struct{}, 1)
	s.subs[notify] = struct{}{}
	if s.has {
		notify <- struct{}{}
	}
	return notify
}

func (s *Subject[P, T]) unsubscribe(notify chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, notify)
}

// Emission is one output value together with the parameters that produced it.
type Emission[P, T any] struct {
	Params P
	Value  T
}

// Flow subscribes to the subject's output. The channel is closed when ctx
// ends. Values are conflated the same way as in Updates.
func (s *Subject[P, T]) Flow(ctx context.Context) <-chan T {
	updates := s.Updates(ctx)
	out := make(chan T)

	go func() {
		defer close(out)
		for e := range updates {
			select {
			case out <- e.Value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Updates is Flow with every value tagged by its parameters. Delivery is
// conflated: while a value waits for a slow reader, a newer value from the
// same inner stream replaces it, so readers always get the latest one.
func (s *Subject[P, T]) Updates(ctx context.Context) <-chan Emission[P, T] {
	notify := s.subscribe()
	out := make(chan Emission[P, T])

	go func() {
		defer close(out)
		defer s.unsubscribe(notify)

		var (
			current     P
			started     bool
			inner       <-chan T
			cancelInner context.CancelFunc = func() {}

			last    T
			hasLast bool

			pending Emission[P, T]
			sendCh  chan Emission[P, T]
		)
		defer func() { cancelInner() }()

		for {
			select {
			case <-ctx.Done():
				return

			case <-notify:
				params, _ := s.Latest()
				if started && params == current {
					continue
				}
				cancelInner()
				var innerCtx context.Context
				innerCtx, cancelInner = context.WithCancel(ctx)
				current, started = params, true
				inner = s.source(innerCtx, params)
				// a value from the cancelled stream is stale
				sendCh = nil

			case v, ok := <-inner:
				if !ok {
					inner = nil
					continue
				}
				if s.equal != nil && hasLast && s.equal(last, v) {
					continue
				}
				pending, sendCh = Emission[P, T]{Params: current, Value: v}, out

			case sendCh <- pending:
				last, hasLast = pending.Value, true
				sendCh = nil
			}
		}
	}()

	return out
}

// Single is a Source helper that emits one value and completes.
func Single[T any](v T) <-chan T {
	ch := make(chan T, 1)
	ch <- v
	close(ch)
	return ch
}
