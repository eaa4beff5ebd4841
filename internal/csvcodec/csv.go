// Package csvcodec is the one shared CSV codec for BOQ imports and exports.
// Grammar: RFC 4180 — comma-separated, fields containing commas, quotes or
// newlines are wrapped in double quotes, embedded quotes are doubled. The
// first row is a header; header names are matched to schema fields
// case-insensitively, with spaces and dashes treated as underscores.
package csvcodec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"boqtrack/internal/schema"
)

// Table is raw decoded CSV.
type Table struct {
	Header []string
	Rows   [][]string
}

// Decode reads an entire CSV document. Rows with a deviating field count are
// an error.
func Decode(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(all) == 0 {
		return Table{}, fmt.Errorf("csv is empty")
	}
	return Table{Header: all[0], Rows: all[1:]}, nil
}

// Encode writes t as a CSV document.
func Encode(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RowError ties a per-row failure to its 1-based line number in the file.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// normalizeHeader maps a CSV column name onto a schema field name.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// MatchHeader resolves CSV columns to schema fields. Unknown columns are
// ignored; every required schema field must be present.
func MatchHeader(header []string, s schema.Schema) (map[int]string, error) {
	declared := map[string]bool{}
	for _, name := range s.FieldNames() {
		declared[name] = true
	}

	cols := map[int]string{}
	seen := map[string]bool{}
	for i, h := range header {
		name := normalizeHeader(h)
		if !declared[name] {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		cols[i] = name
	}

	var missing []string
	for _, f := range s.Fields {
		if f.Required && !seen[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// DecodeRecords parses CSV into schema-validated records. Rows that fail
// validation are collected as RowErrors; valid rows are still returned, so a
// partially bad file can be reported in full.
func DecodeRecords(r io.Reader, s schema.Schema) ([]map[string]any, []RowError, error) {
	t, err := Decode(r)
	if err != nil {
		return nil, nil, err
	}
	cols, err := MatchHeader(t.Header, s)
	if err != nil {
		return nil, nil, err
	}

	var records []map[string]any
	var rowErrs []RowError
	for i, row := range t.Rows {
		line := i + 2 // 1-based, after the header
		draft := map[string]any{}
		for col, name := range cols {
			if col < len(row) {
				draft[name] = row[col]
			}
		}
		rec, verr := s.Validate(draft)
		if verr != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: verr})
			continue
		}
		records = append(records, rec)
	}
	return records, rowErrs, nil
}
