// Package rowlist implements the repeating-row input model used by the
// list-based forms.
//
// A List always holds at least one row. Filling the last row appends a fresh
// blank row, blurring a redundant blank row prunes it, and ids are never
// reused until the list is Reset. A List is not safe for concurrent use.
package rowlist

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrRowNotFound  = errors.New("rowlist: row not found")
	ErrUnknownField = errors.New("rowlist: unknown field")
)

// ValueField is the conventional name of the single column of a one-field list.
const ValueField = "value"

// Schema lists the columns of a row. Required names the columns that must be
// non-blank for a row to be complete; empty means every column.
type Schema struct {
	Fields   []string `json:"fields"`
	Required []string `json:"required,omitempty"`
}

// SingleValue is the schema of a list holding one value per row.
func SingleValue() Schema {
	return Schema{Fields: []string{ValueField}}
}

func (s Schema) required() []string {
	if len(s.Required) == 0 {
		return s.Fields
	}
	return s.Required
}

func (s Schema) Has(field string) bool {
	return slices.Contains(s.Fields, field)
}

type Row struct {
	ID     int               `json:"id"`
	Values map[string]string `json:"values"`
}

func (r Row) Get(field string) string {
	return r.Values[field]
}

func (r Row) clone() Row {
	values := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Row{ID: r.ID, Values: values}
}

type List struct {
	schema Schema
	rows   []Row
	lastID int
}

// New returns a list with a single blank row with id 1.
func New(schema Schema) *List {
	l := &List{schema: schema}
	l.Reset()
	return l
}

// Restore rebuilds a list from persisted rows. lastID is the highest id ever
// handed out; it is raised to the highest id present when lower.
func Restore(schema Schema, rows []Row, lastID int) *List {
	if len(rows) == 0 {
		return New(schema)
	}
	l := &List{schema: schema, lastID: lastID}
	for _, r := range rows {
		row := Row{ID: r.ID, Values: make(map[string]string, len(schema.Fields))}
		for _, f := range schema.Fields {
			row.Values[f] = r.Values[f]
		}
		l.rows = append(l.rows, row)
		if r.ID > l.lastID {
			l.lastID = r.ID
		}
	}
	return l
}

// Reset discards every row and restarts ids at 1.
func (l *List) Reset() {
	l.lastID = 0
	l.rows = []Row{l.blankRow()}
}

func (l *List) Schema() Schema {
	return l.schema
}

func (l *List) Len() int {
	return len(l.rows)
}

func (l *List) LastID() int {
	return l.lastID
}

// Rows returns a copy of the rows in list order.
func (l *List) Rows() []Row {
	out := make([]Row, len(l.rows))
	for i, r := range l.rows {
		out[i] = r.clone()
	}
	return out
}

// Update sets one field of a row. When the edited row is the last one and it
// becomes complete, a blank row is appended.
func (l *List) Update(id int, field, value string) error {
	if !l.schema.Has(field) {
		return ErrUnknownField
	}
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrRowNotFound
	}
	l.rows[idx].Values[field] = value
	if idx == len(l.rows)-1 && l.IsComplete(l.rows[idx]) {
		l.rows = append(l.rows, l.blankRow())
	}
	return nil
}

// Remove deletes a row. The only remaining row is cleared in place instead.
func (l *List) Remove(id int) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrRowNotFound
	}
	if len(l.rows) == 1 {
		for f := range l.rows[0].Values {
			l.rows[0].Values[f] = ""
		}
		return nil
	}
	l.rows = slices.Delete(l.rows, idx, idx+1)
	return nil
}

// Blur drops a blank row on focus loss, but only when another blank row
// remains to serve as the pending entry slot.
func (l *List) Blur(id int) (bool, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return false, ErrRowNotFound
	}
	if len(l.rows) < 2 || !l.IsBlank(l.rows[idx]) {
		return false, nil
	}
	for i, r := range l.rows {
		if i != idx && l.IsBlank(r) {
			l.rows = slices.Delete(l.rows, idx, idx+1)
			return true, nil
		}
	}
	return false, nil
}

// Complete returns the rows whose required fields are all filled.
func (l *List) Complete() []Row {
	var out []Row
	for _, r := range l.rows {
		if l.IsComplete(r) {
			out = append(out, r.clone())
		}
	}
	return out
}

func (l *List) IsComplete(r Row) bool {
	for _, f := range l.schema.required() {
		if strings.TrimSpace(r.Values[f]) == "" {
			return false
		}
	}
	return true
}

func (l *List) IsBlank(r Row) bool {
	for _, f := range l.schema.Fields {
		if strings.TrimSpace(r.Values[f]) != "" {
			return false
		}
	}
	return true
}

func (l *List) indexOf(id int) int {
	for i, r := range l.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (l *List) blankRow() Row {
	l.lastID++
	values := make(map[string]string, len(l.schema.Fields))
	for _, f := range l.schema.Fields {
		values[f] = ""
	}
	return Row{ID: l.lastID, Values: values}
}
