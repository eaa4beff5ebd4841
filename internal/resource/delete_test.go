package resource_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"boqtrack/internal/resource"
)

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (d *fakeDeleter) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, id)
	return nil
}

func TestDeleteFlow_CancelHasNoSideEffect(t *testing.T) {
	del := &fakeDeleter{}
	flow := resource.NewDeleteFlow("id", del, nil)

	require.NoError(t, flow.RequestDelete(map[string]any{"id": "rec-1"}))
	_, pending := flow.Pending()
	require.True(t, pending)

	flow.Cancel()
	_, pending = flow.Pending()
	require.False(t, pending)
	require.Empty(t, del.deleted, "cancel must result in zero transport calls")
}

func TestDeleteFlow_ConfirmDeletesAndSignalsRefresh(t *testing.T) {
	del := &fakeDeleter{}
	refreshes := 0
	flow := resource.NewDeleteFlow("id", del, func() { refreshes++ })

	require.NoError(t, flow.RequestDelete(map[string]any{"id": "rec-1"}))
	require.NoError(t, flow.Confirm(context.Background()))

	require.Equal(t, []string{"rec-1"}, del.deleted)
	require.Equal(t, 1, refreshes)
	_, pending := flow.Pending()
	require.False(t, pending)
}

func TestDeleteFlow_ConfirmWithoutPending(t *testing.T) {
	del := &fakeDeleter{}
	flow := resource.NewDeleteFlow("id", del, nil)
	require.Error(t, flow.Confirm(context.Background()))
	require.Empty(t, del.deleted)
}

func TestDeleteFlow_FailureDoesNotSignalRefresh(t *testing.T) {
	del := &fakeDeleter{err: errors.New("server error (409): in use")}
	refreshes := 0
	flow := resource.NewDeleteFlow("id", del, func() { refreshes++ })

	require.NoError(t, flow.RequestDelete(map[string]any{"id": "rec-1"}))
	require.Error(t, flow.Confirm(context.Background()))
	require.Zero(t, refreshes)
}

func TestDeleteFlow_RequestRequiresID(t *testing.T) {
	flow := resource.NewDeleteFlow("id", &fakeDeleter{}, nil)
	require.Error(t, flow.RequestDelete(map[string]any{"name": "no id"}))
}

func TestDeleteFlow_NewRequestReplacesPending(t *testing.T) {
	del := &fakeDeleter{}
	flow := resource.NewDeleteFlow("id", del, nil)

	require.NoError(t, flow.RequestDelete(map[string]any{"id": "rec-1"}))
	require.NoError(t, flow.RequestDelete(map[string]any{"id": "rec-2"}))
	require.NoError(t, flow.Confirm(context.Background()))

	require.Equal(t, []string{"rec-2"}, del.deleted)
}
