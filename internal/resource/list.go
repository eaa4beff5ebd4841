package resource

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// State is the list controller's lifecycle state.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lister fetches one page of a remote collection.
type Lister[T any] interface {
	List(ctx context.Context, q Query) (Result[T], error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc[T any] func(ctx context.Context, q Query) (Result[T], error)

func (f ListerFunc[T]) List(ctx context.Context, q Query) (Result[T], error) { return f(ctx, q) }

// Snapshot is an immutable view of the controller's visible state.
type Snapshot[T any] struct {
	State      State
	Query      Query
	Records    []T
	Total      int
	TotalKnown bool
	Err        string
}

// TotalPages derives the page count from the server-reported total. Before
// the first successful load only page 1 is addressable.
func (s Snapshot[T]) TotalPages() int {
	if !s.TotalKnown {
		return 1
	}
	return int(math.Ceil(float64(s.Total) / float64(s.Query.PageSize)))
}

// ListController owns the paginated, filterable view of one remote
// collection. Fetches triggered by parameter changes overlap freely; the
// guard ensures the most recently initiated one wins.
type ListController[T any] struct {
	mu       sync.Mutex
	lister   Lister[T]
	base     context.Context
	guard    Guard
	debounce time.Duration
	timer    *time.Timer
	onChange func(Snapshot[T])

	state      State
	query      Query
	records    []T
	total      int
	totalKnown bool
	errMsg     string
}

// ListOption configures a ListController.
type ListOption[T any] func(*ListController[T])

// WithQuery sets the initial query.
func WithQuery[T any](q Query) ListOption[T] {
	return func(c *ListController[T]) { c.query = q.Normalize() }
}

// WithDebounce delays search-triggered fetches by d, coalescing fast typing.
func WithDebounce[T any](d time.Duration) ListOption[T] {
	return func(c *ListController[T]) { c.debounce = d }
}

// WithOnChange registers a callback invoked after every visible state
// change. It runs outside the controller lock.
func WithOnChange[T any](fn func(Snapshot[T])) ListOption[T] {
	return func(c *ListController[T]) { c.onChange = fn }
}

func NewListController[T any](ctx context.Context, lister Lister[T], opts ...ListOption[T]) *ListController[T] {
	c := &ListController[T]{
		lister: lister,
		base:   ctx,
		state:  Idle,
		query:  Query{Page: 1, PageSize: 50},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the visible state.
func (c *ListController[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ListController[T]) snapshotLocked() Snapshot[T] {
	records := make([]T, len(c.records))
	copy(records, c.records)
	return Snapshot[T]{
		State:      c.state,
		Query:      c.query,
		Records:    records,
		Total:      c.total,
		TotalKnown: c.totalKnown,
		Err:        c.errMsg,
	}
}

// SetSearchTerm updates the search term, resets to page 1 and begins a new
// fetch (debounced when configured).
func (c *ListController[T]) SetSearchTerm(term string) {
	c.mu.Lock()
	c.query.Search = term
	c.query.Page = 1
	if c.debounce > 0 {
		c.state = Loading
		snap := c.snapshotLocked()
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = time.AfterFunc(c.debounce, func() {
			c.mu.Lock()
			snap := c.dispatchLocked()
			c.mu.Unlock()
			c.notify(snap)
		})
		c.mu.Unlock()
		c.notify(snap)
		return
	}
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetPage moves to page n. Out-of-range pages are rejected without a network
// call; the return value reports whether the request was accepted.
func (c *ListController[T]) SetPage(n int) bool {
	c.mu.Lock()
	if n < 1 || (n != 1 && n > c.snapshotLocked().TotalPages()) {
		c.mu.Unlock()
		return false
	}
	c.query.Page = n
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// SetPageSize changes the page size and resets to page 1.
func (c *ListController[T]) SetPageSize(n int) {
	c.mu.Lock()
	c.query.PageSize = n
	c.query = c.query.Normalize()
	c.query.Page = 1
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetFilter sets one extra filter and resets to page 1. An empty value
// removes the filter.
func (c *ListController[T]) SetFilter(key, value string) {
	c.mu.Lock()
	c.query = c.query.WithFilter(key, value)
	c.query.Page = 1
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Refresh re-issues the current query. Used after create/update/delete.
func (c *ListController[T]) Refresh() {
	c.mu.Lock()
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// dispatchLocked begins a fetch for the current query, superseding any
// in-flight one. Caller holds the lock; the returned snapshot reflects the
// Loading transition and should be passed to notify after unlocking.
func (c *ListController[T]) dispatchLocked() Snapshot[T] {
	c.state = Loading
	ctx, tok := c.guard.Begin(c.base)
	q := c.query
	go func() {
		res, err := c.lister.List(ctx, q)
		c.apply(tok, res, err)
	}()
	return c.snapshotLocked()
}

// apply installs a fetch outcome, unless the token was superseded or the
// request was cancelled — in both cases visible state must not change.
func (c *ListController[T]) apply(tok Token, res Result[T], err error) {
	c.mu.Lock()
	if !c.guard.IsCurrent(tok) {
		c.mu.Unlock()
		return
	}
	if errors.Is(err, context.Canceled) {
		c.mu.Unlock()
		return
	}
	if err != nil {
		// Keep the previous records and total: a failed refresh must not
		// blank the table.
		c.state = Failed
		c.errMsg = err.Error()
	} else {
		c.state = Loaded
		c.errMsg = ""
		c.records = res.Records
		c.total = res.Total
		c.totalKnown = true
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *ListController[T]) notify(snap Snapshot[T]) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
