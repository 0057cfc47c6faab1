// Package feed keeps live paged lists for clients. A feed wraps a Subject
// whose output is a pager; clients change the parameters at any time and
// pull pages from the pager built for the latest ones.
package feed

import (
	"context"
	"sync"
	"time"

	"quiz-app/internal/apperr"
	"quiz-app/internal/interactor"
	"quiz-app/internal/paging"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var openFeeds = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "quiz_feeds_open",
	Help: "Number of live paged feeds.",
}, []string{"feed"})

// Opener creates the subject backing a new feed.
type Opener[P comparable, T any] func() *interactor.Subject[P, *paging.Pager[T]]

type Feed[P comparable, T any] struct {
	ID    string
	Owner string

	subject *interactor.Subject[P, *paging.Pager[T]]
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	want     P
	current  *interactor.Emission[P, *paging.Pager[T]]
	changed  chan struct{}
	lastUsed time.Time
}

func (f *Feed[P, T]) run(updates <-chan interactor.Emission[P, *paging.Pager[T]]) {
	defer close(f.done)
	for e := range updates {
		f.mu.Lock()
		f.current = &e
		close(f.changed)
		f.changed = make(chan struct{})
		f.mu.Unlock()
	}
}

// Params returns the latest parameters.
func (f *Feed[P, T]) Params() P {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.want
}

// Update replaces the parameters. Pages pulled afterwards come from a pager
// built for them.
func (f *Feed[P, T]) Update(params P) {
	f.mu.Lock()
	f.want = params
	f.mu.Unlock()
	f.subject.Invoke(params)
}

// Next returns the following page for the latest parameters, waiting for
// their pager when an update is still in flight.
func (f *Feed[P, T]) Next(ctx context.Context) (paging.Page[T], error) {
	for {
		f.mu.Lock()
		if f.current != nil && f.current.Params == f.want {
			pager := f.current.Value
			f.mu.Unlock()
			return pager.Next(ctx)
		}
		changed := f.changed
		f.mu.Unlock()

		select {
		case <-changed:
		case <-f.done:
			return paging.Page[T]{}, apperr.New(apperr.KindNotFound)
		case <-ctx.Done():
			return paging.Page[T]{}, apperr.Wrap(apperr.KindUnexpected, ctx.Err())
		}
	}
}

// Done reports whether the current pager has reached the end.
func (f *Feed[P, T]) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current != nil && f.current.Params == f.want && f.current.Value.Done()
}

func (f *Feed[P, T]) close() {
	f.cancel()
	<-f.done
}

type Registry[P comparable, T any] struct {
	name string
	open Opener[P, T]
	idle time.Duration
	now  func() time.Time

	mu    sync.Mutex
	feeds map[string]*Feed[P, T]
}

// NewRegistry creates a registry whose feeds expire after idle without use.
// A non-positive idle disables expiry.
func NewRegistry[P comparable, T any](name string, open Opener[P, T], idle time.Duration) *Registry[P, T] {
	return &Registry[P, T]{
		name:  name,
		open:  open,
		idle:  idle,
		now:   time.Now,
		feeds: make(map[string]*Feed[P, T]),
	}
}

// Create opens a feed for owner. The feed outlives the request; ctx only
// contributes its values, such as the caller's session.
func (r *Registry[P, T]) Create(ctx context.Context, owner string, params P) *Feed[P, T] {
	feedCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	f := &Feed[P, T]{
		ID:       uuid.NewString(),
		Owner:    owner,
		subject:  r.open(),
		cancel:   cancel,
		done:     make(chan struct{}),
		changed:  make(chan struct{}),
		lastUsed: r.now(),
	}
	go f.run(f.subject.Updates(feedCtx))
	f.Update(params)

	r.mu.Lock()
	r.feeds[f.ID] = f
	r.mu.Unlock()
	openFeeds.WithLabelValues(r.name).Inc()

	return f
}

// Get returns the owner's feed and marks it as used. Feeds of other owners
// are reported as missing.
func (r *Registry[P, T]) Get(id, owner string) (*Feed[P, T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.feeds[id]
	if !ok || f.Owner != owner {
		return nil, apperr.New(apperr.KindNotFound)
	}
	f.mu.Lock()
	f.lastUsed = r.now()
	f.mu.Unlock()
	return f, nil
}

func (r *Registry[P, T]) Delete(id, owner string) error {
	r.mu.Lock()
	f, ok := r.feeds[id]
	if !ok || f.Owner != owner {
		r.mu.Unlock()
		return apperr.New(apperr.KindNotFound)
	}
	delete(r.feeds, id)
	r.mu.Unlock()

	f.close()
	openFeeds.WithLabelValues(r.name).Dec()
	return nil
}

func (r *Registry[P, T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feeds)
}

// Sweep closes feeds idle for longer than the registry's limit and returns
// how many were closed.
func (r *Registry[P, T]) Sweep() int {
	if r.idle <= 0 {
		return 0
	}

	now := r.now()
	var expired []*Feed[P, T]

	r.mu.Lock()
	for id, f := range r.feeds {
		f.mu.Lock()
		idle := now.Sub(f.lastUsed)
		f.mu.Unlock()
		if idle > r.idle {
			expired = append(expired, f)
			delete(r.feeds, id)
		}
	}
	r.mu.Unlock()

	for _, f := range expired {
		f.close()
		openFeeds.WithLabelValues(r.name).Dec()
	}
	if len(expired) > 0 {
		logrus.WithFields(logrus.Fields{"feed": r.name, "expired": len(expired)}).Debug("Closed idle feeds")
	}
	return len(expired)
}

// Run sweeps periodically until ctx ends, then closes every feed.
func (r *Registry[P, T]) Run(ctx context.Context) {
	interval := r.idle / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry[P, T]) closeAll() {
	r.mu.Lock()
	feeds := r.feeds
	r.feeds = make(map[string]*Feed[P, T])
	r.mu.Unlock()

	for _, f := range feeds {
		f.close()
		openFeeds.WithLabelValues(r.name).Dec()
	}
}
