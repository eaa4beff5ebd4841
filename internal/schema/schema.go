// Package schema describes the editable fields of a remote resource and
// validates draft records against that description. One coercion rule applies
// everywhere: declared-numeric fields are converted to numbers before submit,
// and non-numeric input is a validation failure.
package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the declared type of a field.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
	Date // calendar date, wire format 2006-01-02
)

const DateLayout = "2006-01-02"

// Field describes one editable field.
type Field struct {
	Name             string
	Kind             Kind
	Required         bool
	EditableOnUpdate bool
}

// Schema describes a resource's fields. IDField names the identifying field;
// its presence in a record distinguishes edit from create.
type Schema struct {
	IDField string
	Fields  []Field
}

// Field returns the declaration for name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the declared field names in order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// ValidationError reports which required fields are missing and which values
// could not be coerced to their declared kind.
type ValidationError struct {
	Missing []string
	Invalid map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		names := make([]string, 0, len(e.Invalid))
		for k := range e.Invalid {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			parts = append(parts, k+": "+e.Invalid[k])
		}
	}
	if len(parts) == 0 {
		return "invalid record"
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Invalid == nil {
		e.Invalid = map[string]string{}
	}
	e.Invalid[field] = msg
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// Validate checks draft against the schema and returns a coerced copy ready
// for submission. The draft itself is never mutated. Unknown keys pass
// through untouched; declared fields with empty values are dropped from the
// copy unless required.
func (s Schema) Validate(draft map[string]any) (map[string]any, *ValidationError) {
	verr := &ValidationError{}
	out := make(map[string]any, len(draft))

	for k, v := range draft {
		f, declared := s.Field(k)
		if !declared {
			out[k] = v
			continue
		}
		if isEmpty(v) {
			continue // handled by the required sweep below
		}
		coerced, err := Coerce(f.Kind, v)
		if err != nil {
			verr.add(f.Name, err.Error())
			continue
		}
		out[k] = coerced
	}

	for _, f := range s.Fields {
		if f.Required && isEmpty(draft[f.Name]) {
			verr.Missing = append(verr.Missing, f.Name)
		}
	}
	sort.Strings(verr.Missing)

	if verr.empty() {
		return out, nil
	}
	return nil, verr
}

// Coerce converts v to the Go representation of kind. String input is
// trimmed before parsing. JSON-decoded numbers (float64) are accepted for
// the numeric kinds.
func Coerce(kind Kind, v any) (any, error) {
	switch kind {
	case String:
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t), nil
		default:
			return fmt.Sprintf("%v", v), nil
		}
	case Int:
		switch t := v.(type) {
		case int:
			return int64(t), nil
		case int64:
			return t, nil
		case float64:
			if t != float64(int64(t)) {
				return nil, fmt.Errorf("not a whole number: %v", t)
			}
			return int64(t), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("not a number: %q", t)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("not a number: %v", v)
		}
	case Float:
		switch t := v.(type) {
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		case float64:
			return t, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return nil, fmt.Errorf("not a number: %q", t)
			}
			return f, nil
		default:
			return nil, fmt.Errorf("not a number: %v", v)
		}
	case Bool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("not a boolean: %q", t)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("not a boolean: %v", v)
		}
	case Date:
		switch t := v.(type) {
		case time.Time:
			return t.Format(DateLayout), nil
		case string:
			trimmed := strings.TrimSpace(t)
			if _, err := time.Parse(DateLayout, trimmed); err != nil {
				return nil, fmt.Errorf("not a date (want YYYY-MM-DD): %q", t)
			}
			return trimmed, nil
		default:
			return nil, fmt.Errorf("not a date: %v", v)
		}
	default:
		return v, nil
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
