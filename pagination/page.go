// Package pagination implements Orb's cursor pages and an iterator that
// walks them.
package pagination

import (
	"context"
	"errors"
	"iter"

	"github.com/modelrelay/orb-go/internal/apijson"
)

// PaginationMetadata is the cursor block of every list response.
type PaginationMetadata struct {
	HasMore    bool             `json:"has_more,required"`
	NextCursor *string          `json:"next_cursor,required,nullable"`
	JSON       apijson.Metadata `json:"-"`
}

func (r *PaginationMetadata) UnmarshalJSON(data []byte) error {
	type shadow PaginationMetadata
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r PaginationMetadata) Validate() error { return apijson.Validate(r) }

// Fetcher loads the page that starts at cursor.
type Fetcher[T any] func(ctx context.Context, cursor string) (*Page[T], error)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Data               []T                `json:"data,required"`
	PaginationMetadata PaginationMetadata `json:"pagination_metadata,required"`
	JSON               apijson.Metadata   `json:"-"`

	fetch Fetcher[T]
}

type pageShadow[T any] Page[T]

func (r *Page[T]) UnmarshalJSON(data []byte) error {
	return apijson.UnmarshalRoot(data, (*pageShadow[T])(r))
}

// Validate checks the page and every item on it.
func (r Page[T]) Validate() error { return apijson.Validate(r) }

// WithFetcher attaches the loader GetNextPage uses and returns r.
func (r *Page[T]) WithFetcher(fetch Fetcher[T]) *Page[T] {
	r.fetch = fetch
	return r
}

// NextCursor returns the cursor of the following page, or "" on the last page.
func (r *Page[T]) NextCursor() string {
	if r == nil || !r.PaginationMetadata.HasMore || r.PaginationMetadata.NextCursor == nil {
		return ""
	}
	return *r.PaginationMetadata.NextCursor
}

// HasNextPage reports whether another page can be requested.
func (r *Page[T]) HasNextPage() bool {
	return r.NextCursor() != ""
}

// GetNextPage fetches the following page. It returns nil, nil once the
// last page has been reached.
func (r *Page[T]) GetNextPage(ctx context.Context) (*Page[T], error) {
	cursor := r.NextCursor()
	if cursor == "" {
		return nil, nil
	}
	if r.fetch == nil {
		return nil, errors.New("orb: page was not loaded by a client")
	}
	next, err := r.fetch(ctx, cursor)
	if err != nil {
		return nil, err
	}
	if next != nil && next.fetch == nil {
		next.fetch = r.fetch
	}
	return next, nil
}

// AutoPager iterates over every item of a list, fetching pages on demand.
//
//	pager := client.Customers.ListAutoPaging(ctx, params)
//	for pager.Next(ctx) {
//		use(pager.Current())
//	}
//	if err := pager.Err(); err != nil { ... }
type AutoPager[T any] struct {
	page *Page[T]
	idx  int
	cur  T
	err  error
}

// NewAutoPager starts iteration at page. A non-nil err is reported by Err
// and Next returns false immediately.
func NewAutoPager[T any](page *Page[T], err error) *AutoPager[T] {
	return &AutoPager[T]{page: page, err: err}
}

// Next advances to the next item, loading the following page when the
// current one is exhausted. Empty intermediate pages are skipped.
func (p *AutoPager[T]) Next(ctx context.Context) bool {
	for p.err == nil && p.page != nil {
		if p.idx < len(p.page.Data) {
			p.cur = p.page.Data[p.idx]
			p.idx++
			return true
		}
		next, err := p.page.GetNextPage(ctx)
		if err != nil {
			p.err = err
			return false
		}
		p.page = next
		p.idx = 0
	}
	return false
}

// Current returns the item Next advanced to.
func (p *AutoPager[T]) Current() T {
	return p.cur
}

// Err returns the error that stopped iteration, if any.
func (p *AutoPager[T]) Err() error {
	return p.err
}

// All ranges over the remaining items. A failure is yielded once as the
// final pair.
func (p *AutoPager[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for p.Next(ctx) {
			if !yield(p.Current(), nil) {
				return
			}
		}
		if err := p.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
