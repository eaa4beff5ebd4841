package resource_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boqtrack/internal/resource"
)

type outcome struct {
	res resource.Result[string]
	err error
}

// listCall is one in-flight fake fetch, resolved by the test.
type listCall struct {
	query   resource.Query
	release chan outcome
}

func (c *listCall) resolve(records []string, total int) {
	c.release <- outcome{res: resource.Result[string]{Records: records, Total: total}}
}

func (c *listCall) fail(err error) {
	c.release <- outcome{err: err}
}

// fakeLister blocks each List call until the test resolves it. It ignores
// context cancellation on purpose, so resolution order is fully under test
// control.
type fakeLister struct {
	mu      sync.Mutex
	calls   int
	started chan *listCall
}

func newFakeLister() *fakeLister {
	return &fakeLister{started: make(chan *listCall, 16)}
}

func (l *fakeLister) List(_ context.Context, q resource.Query) (resource.Result[string], error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	c := &listCall{query: q, release: make(chan outcome, 1)}
	l.started <- c
	out := <-c.release
	return out.res, out.err
}

func (l *fakeLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *fakeLister) nextCall(t *testing.T) *listCall {
	t.Helper()
	select {
	case c := <-l.started:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a list call")
		return nil
	}
}

func awaitState[T any](t *testing.T, snaps <-chan resource.Snapshot[T], want resource.State) resource.Snapshot[T] {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-snaps:
			if s.State == want {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

func newController(lister *fakeLister, opts ...resource.ListOption[string]) (*resource.ListController[string], chan resource.Snapshot[string]) {
	snaps := make(chan resource.Snapshot[string], 64)
	opts = append(opts, resource.WithOnChange(func(s resource.Snapshot[string]) { snaps <- s }))
	return resource.NewListController(context.Background(), lister, opts...), snaps
}

func TestListController_StaleResponseDiscarded(t *testing.T) {
	lister := newFakeLister()
	ctrl, snaps := newController(lister)

	ctrl.SetSearchTerm("al")
	callA := lister.nextCall(t)

	ctrl.SetSearchTerm("alpha")
	callB := lister.nextCall(t)
	require.Equal(t, "alpha", callB.query.Search)

	// B resolves first, then the stale A arrives late with different data.
	callB.resolve([]string{"alpha-1"}, 1)
	snap := awaitState(t, snaps, resource.Loaded)
	require.Equal(t, []string{"alpha-1"}, snap.Records)

	callA.resolve([]string{"stale-1", "stale-2"}, 2)
	time.Sleep(50 * time.Millisecond)

	final := ctrl.Snapshot()
	require.Equal(t, resource.Loaded, final.State)
	require.Equal(t, []string{"alpha-1"}, final.Records)
	require.Equal(t, 1, final.Total)
}

func TestListController_StaleResponseDiscarded_AnyOrder(t *testing.T) {
	// Resolution order permutation: the later-issued request must win in
	// both arrival orders.
	for _, staleFirst := range []bool{true, false} {
		t.Run(fmt.Sprintf("staleFirst=%v", staleFirst), func(t *testing.T) {
			lister := newFakeLister()
			ctrl, snaps := newController(lister)

			ctrl.Refresh()
			callA := lister.nextCall(t)
			ctrl.Refresh()
			callB := lister.nextCall(t)

			if staleFirst {
				callA.resolve([]string{"old"}, 1)
				callB.resolve([]string{"new"}, 1)
			} else {
				callB.resolve([]string{"new"}, 1)
				callA.resolve([]string{"old"}, 1)
			}

			snap := awaitState(t, snaps, resource.Loaded)
			require.Equal(t, []string{"new"}, snap.Records)
			time.Sleep(50 * time.Millisecond)
			require.Equal(t, []string{"new"}, ctrl.Snapshot().Records)
		})
	}
}

func TestListController_PageBounds(t *testing.T) {
	lister := newFakeLister()
	ctrl, snaps := newController(lister, resource.WithQuery[string](resource.Query{Page: 1, PageSize: 50}))

	// Before the first load only page 1 is addressable.
	require.False(t, ctrl.SetPage(2))
	require.Zero(t, lister.callCount())

	ctrl.Refresh()
	lister.nextCall(t).resolve(make([]string, 50), 120)
	awaitState(t, snaps, resource.Loaded)

	// 120 records at pageSize 50 => 3 pages.
	require.False(t, ctrl.SetPage(0))
	require.False(t, ctrl.SetPage(4))
	require.Equal(t, 1, lister.callCount(), "rejected pages must not trigger a network call")

	require.True(t, ctrl.SetPage(3))
	call := lister.nextCall(t)
	require.Equal(t, 100, call.query.Skip())
	require.Equal(t, 50, call.query.PageSize)
	call.resolve(make([]string, 20), 120)

	snap := awaitState(t, snaps, resource.Loaded)
	require.Equal(t, 3, snap.TotalPages())
	require.Len(t, snap.Records, 20)
}

func TestListController_FailurePreservesRecords(t *testing.T) {
	lister := newFakeLister()
	ctrl, snaps := newController(lister)

	ctrl.Refresh()
	lister.nextCall(t).resolve([]string{"a", "b"}, 2)
	awaitState(t, snaps, resource.Loaded)

	ctrl.Refresh()
	lister.nextCall(t).fail(fmt.Errorf("server error (500): boom"))
	snap := awaitState(t, snaps, resource.Failed)

	require.Equal(t, []string{"a", "b"}, snap.Records, "a failed refresh must not clear the table")
	require.Equal(t, 2, snap.Total)
	require.Contains(t, snap.Err, "boom")
}

func TestListController_CancelledCausesNoTransition(t *testing.T) {
	lister := newFakeLister()
	ctrl, snaps := newController(lister)

	ctrl.Refresh()
	lister.nextCall(t).resolve([]string{"a"}, 1)
	awaitState(t, snaps, resource.Loaded)

	ctrl.Refresh()
	lister.nextCall(t).fail(context.Canceled)
	time.Sleep(50 * time.Millisecond)

	snap := ctrl.Snapshot()
	require.Equal(t, resource.Loading, snap.State, "cancellation is not a failure")
	require.Equal(t, []string{"a"}, snap.Records)
	require.Empty(t, snap.Err)
}

func TestListController_SearchResetsPage(t *testing.T) {
	lister := newFakeLister()
	ctrl, snaps := newController(lister, resource.WithQuery[string](resource.Query{Page: 1, PageSize: 10}))

	ctrl.Refresh()
	lister.nextCall(t).resolve(make([]string, 10), 30)
	awaitState(t, snaps, resource.Loaded)

	require.True(t, ctrl.SetPage(3))
	lister.nextCall(t).resolve(make([]string, 10), 30)
	awaitState(t, snaps, resource.Loaded)

	ctrl.SetSearchTerm("tower")
	call := lister.nextCall(t)
	require.Equal(t, "tower", call.query.Search)
	require.Equal(t, 1, call.query.Page)
	require.Equal(t, 0, call.query.Skip())
}

func TestListController_DebounceCoalescesTyping(t *testing.T) {
	lister := newFakeLister()
	ctrl, _ := newController(lister, resource.WithDebounce[string](40*time.Millisecond))

	ctrl.SetSearchTerm("s")
	ctrl.SetSearchTerm("si")
	ctrl.SetSearchTerm("site")

	call := lister.nextCall(t)
	require.Equal(t, "site", call.query.Search)
	call.resolve(nil, 0)

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, 1, lister.callCount())
}

func TestListController_SetFilterResetsPage(t *testing.T) {
	lister := newFakeLister()
	ctrl, snaps := newController(lister, resource.WithQuery[string](resource.Query{Page: 1, PageSize: 10}))

	ctrl.SetFilter("status", "active")
	call := lister.nextCall(t)
	require.Equal(t, "active", call.query.Filters["status"])
	require.Equal(t, 1, call.query.Page)
	call.resolve(nil, 0)
	awaitState(t, snaps, resource.Loaded)
}
