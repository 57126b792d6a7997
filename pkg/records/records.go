// Package records defines the in-memory Record Table that flows from the CSV
// parser through the transformer chain into storage.
package records

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Kind is the logical type of a column.
type Kind string

const (
	KindString    Kind = "string"
	KindInt       Kind = "int"
	KindFloat     Kind = "float"
	KindBool      Kind = "bool"
	KindDate      Kind = "date"
	KindTime      Kind = "time"
	KindTimestamp Kind = "timestamp"
)

// TimeLayout is the textual form of KindTime values.
const TimeLayout = "15:04:05"

// ParseKind maps the type names accepted in pipeline files (including common
// SQL spellings) onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string", "text", "varchar":
		return KindString, nil
	case "int", "integer", "bigint", "int8", "int4":
		return KindInt, nil
	case "float", "double", "real", "numeric", "decimal":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBool, nil
	case "date":
		return KindDate, nil
	case "time":
		return KindTime, nil
	case "timestamp", "datetime", "timestamptz":
		return KindTimestamp, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// Record maps column name to a scalar value. A missing key reads as null.
type Record map[string]any

// Row is one record plus the source line it came from (1-based, header on
// line 1). Line is 0 for rows that did not come from a file.
type Row struct {
	Line   int
	Values Record
}

// Table is an ordered sequence of rows sharing one ordered column set.
type Table struct {
	Columns []string
	Kinds   map[string]Kind
	Rows    []Row
}

// New returns an empty table with the given columns, all of KindString.
func New(columns ...string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Kinds:   make(map[string]Kind, len(columns)),
	}
	for _, c := range columns {
		t.Kinds[c] = KindString
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Kind returns the column kind, KindString when unset.
func (t *Table) Kind(name string) Kind {
	if k, ok := t.Kinds[name]; ok && k != "" {
		return k
	}
	return KindString
}

// SetKind records the logical type of an existing column.
func (t *Table) SetKind(name string, k Kind) {
	if t.Kinds == nil {
		t.Kinds = map[string]Kind{}
	}
	t.Kinds[name] = k
}

// AddColumn appends a new column; every existing row gets a nil value.
func (t *Table) AddColumn(name string, k Kind) error {
	if name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if t.HasColumn(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	t.Columns = append(t.Columns, name)
	t.SetKind(name, k)
	for i := range t.Rows {
		if t.Rows[i].Values == nil {
			t.Rows[i].Values = Record{}
		}
		t.Rows[i].Values[name] = nil
	}
	return nil
}

// RenameColumn renames a column in the header and in every row.
func (t *Table) RenameColumn(from, to string) error {
	idx := slices.Index(t.Columns, from)
	if idx < 0 {
		return fmt.Errorf("column %q not found", from)
	}
	if from == to {
		return nil
	}
	if t.HasColumn(to) {
		return fmt.Errorf("column %q already exists", to)
	}
	t.Columns[idx] = to
	t.SetKind(to, t.Kind(from))
	delete(t.Kinds, from)
	for i := range t.Rows {
		v, ok := t.Rows[i].Values[from]
		if !ok {
			continue
		}
		delete(t.Rows[i].Values, from)
		t.Rows[i].Values[to] = v
	}
	return nil
}

// DropColumn removes a column from the header and from every row.
func (t *Table) DropColumn(name string) error {
	idx := slices.Index(t.Columns, name)
	if idx < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	t.Columns = slices.Delete(t.Columns, idx, idx+1)
	delete(t.Kinds, name)
	for i := range t.Rows {
		delete(t.Rows[i].Values, name)
	}
	return nil
}

// Filter keeps the rows for which keep returns true, preserving order, and
// returns how many rows were removed.
func (t *Table) Filter(keep func(Row) bool) int {
	before := len(t.Rows)
	t.Rows = slices.DeleteFunc(t.Rows, func(r Row) bool { return !keep(r) })
	return before - len(t.Rows)
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[name]
	}
	return out
}

// Values returns every row as a slice aligned to t.Columns. Missing keys
// become nil.
func (t *Table) Values() [][]any {
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = r.Values[c]
		}
		out[i] = row
	}
	return out
}

// Clone returns a deep copy of the table structure. Scalar values are
// immutable (time.Time included) so they are shared.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: slices.Clone(t.Columns),
		Kinds:   maps.Clone(t.Kinds),
		Rows:    make([]Row, len(t.Rows)),
	}
	if out.Kinds == nil {
		out.Kinds = map[string]Kind{}
	}
	for i, r := range t.Rows {
		out.Rows[i] = Row{Line: r.Line, Values: maps.Clone(r.Values)}
	}
	return out
}

// IsNull reports whether v is a missing value: nil or the empty string.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Date truncates t to midnight UTC, the canonical form of KindDate values.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
