package resource

import (
	"context"
	"fmt"
	"sync"

	"boqtrack/internal/schema"
)

// Mode distinguishes creating a new record from editing an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Submitter persists a validated draft. Create is used in create mode,
// Update in edit mode.
type Submitter interface {
	Create(ctx context.Context, record map[string]any) error
	Update(ctx context.Context, id string, record map[string]any) error
}

// FormController owns the draft record behind a create/edit form. The draft
// is always a copy: it is never shared with a list controller's record set.
type FormController struct {
	mu        sync.Mutex
	schema    schema.Schema
	submitter Submitter
	onSaved   func()

	open      bool
	mode      Mode
	draft     map[string]any
	recordID  string
	fieldErrs *schema.ValidationError
	submitErr string
}

// NewFormController builds a form controller. onSaved is the refresh signal
// to the owning list controller; it fires exactly once per successful
// submit.
func NewFormController(s schema.Schema, sub Submitter, onSaved func()) *FormController {
	return &FormController{schema: s, submitter: sub, onSaved: onSaved}
}

// OpenCreate opens the form in create mode with a copy of template as the
// draft. Any identifying field in the template is stripped.
func (f *FormController) OpenCreate(template map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = cloneRecord(template)
	delete(f.draft, f.schema.IDField)
	f.recordID = ""
	f.mode = ModeCreate
	f.open = true
	f.fieldErrs = nil
	f.submitErr = ""
}

// OpenEdit opens the form in edit mode with a copy of record as the draft.
// The record must carry the identifying field.
func (f *FormController) OpenEdit(record map[string]any) error {
	id, ok := record[f.schema.IDField].(string)
	if !ok || id == "" {
		return fmt.Errorf("record has no %q field", f.schema.IDField)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = cloneRecord(record)
	f.recordID = id
	f.mode = ModeEdit
	f.open = true
	f.fieldErrs = nil
	f.submitErr = ""
	return nil
}

// IsOpen reports whether the form is currently open.
func (f *FormController) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Mode returns the current mode. Meaningful only while open.
func (f *FormController) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Draft returns a copy of the current draft.
func (f *FormController) Draft() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneRecord(f.draft)
}

// UpdateField mutates one draft field. In edit mode, fields declared not
// editable on update are rejected.
func (f *FormController) UpdateField(key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return fmt.Errorf("form is not open")
	}
	if fld, ok := f.schema.Field(key); ok && f.mode == ModeEdit && !fld.EditableOnUpdate {
		return fmt.Errorf("field %q cannot be changed on update", key)
	}
	f.draft[key] = value
	return nil
}

// FieldErrors returns the validation outcome of the last submit attempt, or
// nil when it passed (or no submit happened yet).
func (f *FormController) FieldErrors() *schema.ValidationError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs
}

// SubmitError returns the transport error message of the last failed submit.
func (f *FormController) SubmitError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitErr
}

// Submit validates the draft and sends it. Validation failure never reaches
// the transport. On transport success the form closes and the refresh signal
// fires; on transport failure the form stays open with the error recorded.
func (f *FormController) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return fmt.Errorf("form is not open")
	}
	coerced, verr := f.schema.Validate(f.draft)
	if verr != nil {
		f.fieldErrs = verr
		f.mu.Unlock()
		return verr
	}
	f.fieldErrs = nil
	mode := f.mode
	id := f.recordID
	f.mu.Unlock()

	var err error
	if mode == ModeEdit {
		err = f.submitter.Update(ctx, id, coerced)
	} else {
		err = f.submitter.Create(ctx, coerced)
	}

	f.mu.Lock()
	if err != nil {
		f.submitErr = err.Error()
		f.mu.Unlock()
		return err
	}
	f.open = false
	f.draft = nil
	f.recordID = ""
	f.submitErr = ""
	f.mu.Unlock()

	if f.onSaved != nil {
		f.onSaved()
	}
	return nil
}

// Cancel discards the draft and closes the form. No side effects.
func (f *FormController) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.draft = nil
	f.recordID = ""
	f.fieldErrs = nil
	f.submitErr = ""
}

func cloneRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
