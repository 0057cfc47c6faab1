// Package interactor runs single-purpose use cases off the caller's goroutine
// and reports their progress as a stream of statuses.
package interactor

import (
	"context"
	"time"

	"quiz-app/internal/apperr"

	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 30 * time.Second

type State int

const (
	StateStarted State = iota
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

type Status[R any] struct {
	State State
	Value R
	Err   *apperr.Error
}

func (s Status[R]) Terminal() bool {
	return s.State != StateStarted
}

// Func is the body of a use case.
type Func[P, R any] func(ctx context.Context, params P) (R, error)

type Interactor[P, R any] struct {
	name       string
	work       Func[P, R]
	dispatcher *Dispatcher
	timeout    time.Duration
}

func New[P, R any](name string, dispatcher *Dispatcher, work Func[P, R]) *Interactor[P, R] {
	return &Interactor[P, R]{
		name:       name,
		work:       work,
		dispatcher: dispatcher,
		timeout:    DefaultTimeout,
	}
}

// WithTimeout returns a copy with a different default timeout.
func (i *Interactor[P, R]) WithTimeout(timeout time.Duration) *Interactor[P, R] {
	c := *i
	if timeout > 0 {
		c.timeout = timeout
	}
	return &c
}

func (i *Interactor[P, R]) Name() string {
	return i.name
}

type InvokeOption func(*invokeOptions)

type invokeOptions struct {
	timeout time.Duration
}

// Timeout overrides the interactor's timeout for one call.
func Timeout(d time.Duration) InvokeOption {
	return func(o *invokeOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Invoke starts the use case and returns its status stream: Started, then
// exactly one Success or Error, then the channel is closed. The channel is
// buffered so an abandoned stream never blocks the worker.
func (i *Interactor[P, R]) Invoke(ctx context.Context, params P, opts ...InvokeOption) <-chan Status[R] {
	o := invokeOptions{timeout: i.timeout}
	for _, opt := range opts {
		opt(&o)
	}

	out := make(chan Status[R], 2)
	out <- Status[R]{State: StateStarted}

	finish := func(value R, err *apperr.Error, start time.Time) {
		status := "success"
		if err != nil {
			status = string(err.Kind)
			out <- Status[R]{State: StateError, Err: err}
		} else {
			out <- Status[R]{State: StateSuccess, Value: value}
		}
		close(out)
		invocations.WithLabelValues(i.name, status).Inc()
		duration.WithLabelValues(i.name).Observe(time.Since(start).Seconds())
	}

	start := time.Now()
	i.dispatcher.Submit(ctx, func() {
		value, err := i.run(ctx, params, o.timeout)
		finish(value, err, start)
	}, func(err error) {
		var zero R
		finish(zero, apperr.Wrap(apperr.KindUnexpected, err), start)
	})

	return out
}

func (i *Interactor[P, R]) run(ctx context.Context, params P, timeout time.Duration) (R, *apperr.Error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value R
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := i.work(ctx, params)
		done <- result{value, err}
	}()

	var zero R
	select {
	case r := <-done:
		if r.err != nil {
			appErr := apperr.Coerce(r.err)
			if appErr.Kind == apperr.KindUnexpected {
				logrus.WithError(r.err).WithField("interactor", i.name).Error("Use case failed")
			}
			return zero, appErr
		}
		return r.value, nil
	case <-ctx.Done():
		logrus.WithField("interactor", i.name).WithError(ctx.Err()).Warn("Use case did not finish in time")
		return zero, apperr.Wrap(apperr.KindUnexpected, ctx.Err())
	}
}

// ExecuteSync runs the use case body on the calling goroutine, for
// composition inside other use cases.
func (i *Interactor[P, R]) ExecuteSync(ctx context.Context, params P) (R, error) {
	return i.work(ctx, params)
}

// Run invokes the use case and waits for its terminal status.
func (i *Interactor[P, R]) Run(ctx context.Context, params P, opts ...InvokeOption) (R, *apperr.Error) {
	return Await(i.Invoke(ctx, params, opts...))
}

// Await drains a status stream and returns its terminal value.
func Await[R any](statuses <-chan Status[R]) (R, *apperr.Error) {
	var zero R
	for s := range statuses {
		switch s.State {
		case StateSuccess:
			return s.Value, nil
		case StateError:
			return zero, s.Err
		}
	}
	return zero, apperr.New(apperr.KindUnexpected)
}
