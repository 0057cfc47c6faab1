// Package paging bridges cursor-paginated queries to infinite-scroll clients.
package paging

import (
	"context"
	"sync"
)

const DefaultPageSize = 20

type LoadParams struct {
	// Cursor is empty for the first page.
	Cursor   string
	LoadSize int
}

type Page[T any] struct {
	Items []T `json:"items"`
	// NextCursor is nil when the page was the last one.
	NextCursor *string `json:"next_cursor"`
}

// Source fetches one page. Implementations must return a non-nil NextCursor
// only when a full page (LoadSize items) was fetched.
type Source[T any] interface {
	Load(ctx context.Context, params LoadParams) (Page[T], error)
}

type SourceFunc[T any] func(ctx context.Context, params LoadParams) (Page[T], error)

func (f SourceFunc[T]) Load(ctx context.Context, params LoadParams) (Page[T], error) {
	return f(ctx, params)
}

// NextCursor returns a cursor for the last item when the page is full.
func NextCursor[T any](items []T, pageSize int, cursorOf func(T) (string, error)) (*string, error) {
	if pageSize <= 0 || len(items) != pageSize {
		return nil, nil
	}
	c, err := cursorOf(items[len(items)-1])
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Pager walks a Source page by page. It is safe for concurrent use; loads
// are serialized so every page is requested exactly once.
type Pager[T any] struct {
	source   Source[T]
	pageSize int

	mu     sync.Mutex
	cursor string
	done   bool
	loaded int
}

func NewPager[T any](source Source[T], pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager[T]{source: source, pageSize: pageSize}
}

// Next loads the following page. Once the end is reached it returns an empty
// page with a nil cursor. A failed load can be retried.
func (p *Pager[T]) Next(ctx context.Context) (Page[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return Page[T]{Items: []T{}}, nil
	}

	page, err := p.source.Load(ctx, LoadParams{Cursor: p.cursor, LoadSize: p.pageSize})
	if err != nil {
		return Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	p.loaded += len(page.Items)
	if page.NextCursor == nil {
		p.done = true
	} else {
		p.cursor = *page.NextCursor
	}
	return page, nil
}

func (p *Pager[T]) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Loaded reports how many items have been handed out so far.
func (p *Pager[T]) Loaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

func (p *Pager[T]) PageSize() int {
	return p.pageSize
}
