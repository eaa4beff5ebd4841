package resource

import (
	"context"
	"fmt"
	"sync"
)

// Deleter removes one record from the remote collection.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// DeleteFlow gates a destructive action behind an explicit confirmation.
// There is no auto-confirm path: RequestDelete only stages the record, and
// nothing reaches the transport until Confirm.
type DeleteFlow struct {
	mu        sync.Mutex
	idField   string
	deleter   Deleter
	onDeleted func()

	pending map[string]any
}

// NewDeleteFlow builds a delete flow. onDeleted is the refresh signal to the
// owning list controller; it fires exactly once per confirmed delete.
func NewDeleteFlow(idField string, del Deleter, onDeleted func()) *DeleteFlow {
	return &DeleteFlow{idField: idField, deleter: del, onDeleted: onDeleted}
}

// RequestDelete stages record for deletion, replacing any previously staged
// one. The record must carry the identifying field.
func (d *DeleteFlow) RequestDelete(record map[string]any) error {
	id, ok := record[d.idField].(string)
	if !ok || id == "" {
		return fmt.Errorf("record has no %q field", d.idField)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = cloneRecord(record)
	return nil
}

// Pending returns a copy of the staged record, if any.
func (d *DeleteFlow) Pending() (map[string]any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return nil, false
	}
	return cloneRecord(d.pending), true
}

// Confirm deletes the staged record. On success the stage is cleared and the
// refresh signal fires; on failure the stage is cleared and the error
// returned.
func (d *DeleteFlow) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.pending == nil {
		d.mu.Unlock()
		return fmt.Errorf("no delete pending")
	}
	id := d.pending[d.idField].(string)
	d.pending = nil
	d.mu.Unlock()

	if err := d.deleter.Delete(ctx, id); err != nil {
		return err
	}
	if d.onDeleted != nil {
		d.onDeleted()
	}
	return nil
}

// Cancel discards the staged record. No side effect at all.
func (d *DeleteFlow) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
}
