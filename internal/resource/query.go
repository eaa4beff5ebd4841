// Package resource implements the controllers behind every paginated list
// screen: a list controller that owns page/search state and discards stale
// responses, a form controller that owns a draft record, a confirm-gated
// delete flow, and a transient notification channel.
package resource

// Query is one paginated, filtered list request.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
}

// Skip converts page/pageSize to the server's offset parameter. Totals are
// always server-reported; the client never computes its own.
func (q Query) Skip() int {
	return (q.Page - 1) * q.PageSize
}

// Normalize clamps the query to sane bounds, mirroring what the server
// enforces on limit/offset.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 50
	}
	if q.PageSize > 200 {
		q.PageSize = 200
	}
	return q
}

// WithFilter returns a copy of q with one extra filter set.
func (q Query) WithFilter(key, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	if value == "" {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	q.Filters = filters
	return q
}

// Result is one page of records plus the server-reported total.
type Result[T any] struct {
	Records []T
	Total   int
}
