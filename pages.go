package orb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/modelrelay/orb-go/internal/apiquery"
	"github.com/modelrelay/orb-go/pagination"
)

// Page is one page of a list endpoint.
type Page[T any] = pagination.Page[T]

// AutoPager iterates over every item of a list across pages.
type AutoPager[T any] = pagination.AutoPager[T]

// listQuery encodes list params, which may be nil.
func listQuery(params any) (url.Values, error) {
	if params == nil {
		return url.Values{}, nil
	}
	return apiquery.Values(params)
}

// getPage loads the first page of a list and wires GetNextPage to repeat
// the same request with the returned cursor.
func getPage[T any](ctx context.Context, c *Client, path string, query url.Values, opts []RequestOption) (*Page[T], error) {
	var fetch pagination.Fetcher[T]
	fetch = func(ctx context.Context, cursor string) (*Page[T], error) {
		q := make(url.Values, len(query)+1)
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		page := &Page[T]{}
		if err := c.sendAndDecode(ctx, http.MethodGet, path, q, nil, page, opts...); err != nil {
			return nil, err
		}
		return page.WithFetcher(fetch), nil
	}
	return fetch(ctx, "")
}

func newAutoPager[T any](page *Page[T], err error) *AutoPager[T] {
	return pagination.NewAutoPager(page, err)
}

// doJSON performs a call and decodes the response into a new T.
func doJSON[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any, opts []RequestOption) (*T, error) {
	var out T
	if err := c.sendAndDecode(ctx, method, path, query, body, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
