// Package model defines the core domain models used throughout the application.
package model

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the content held by a cell Value.
type ValueKind int

// Value kinds.
const (
	KindEmpty ValueKind = iota
	KindString
	KindNumber
)

// Value is a single worksheet cell: empty, text, or number.
type Value struct {
	text string
	num  float64
	kind ValueKind
}

// Empty returns an empty cell value.
func Empty() Value {
	return Value{}
}

// Text returns a string cell value. An all-blank string is treated as empty.
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{}
	}
	return Value{kind: KindString, text: s}
}

// Number returns a numeric cell value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// ParseValue converts raw cell text into a typed value. Text that parses as a
// float becomes a number and keeps its original spelling for String.
func ParseValue(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return Value{kind: KindNumber, num: n, text: trimmed}
	}
	return Value{kind: KindString, text: raw}
}

// Kind reports what the value holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsEmpty reports whether the cell holds nothing.
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty
}

// String returns the normalized string form. Numbers keep their source
// spelling when read from a document, so long identifiers survive intact.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		if v.text != "" {
			return v.text
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.text
	default:
		return ""
	}
}

// Float returns the numeric reading of the value. Text cells are parsed
// leniently: surrounding whitespace, a leading currency sign, thousands
// separators and a trailing percent sign are ignored.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		s := strings.TrimSpace(v.text)
		s = strings.TrimPrefix(s, "$")
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Row is one record of a worksheet: an ordered mapping from field name to value.
type Row struct {
	cells  map[string]Value
	fields []string
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{cells: make(map[string]Value)}
}

// RowOf builds a row from alternating field/value pairs, preserving their order.
func RowOf(pairs ...any) *Row {
	r := NewRow()
	for i := 0; i+1 < len(pairs); i += 2 {
		field, _ := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case Value:
			r.Set(field, v)
		case string:
			r.Set(field, Text(v))
		case float64:
			r.Set(field, Number(v))
		case int:
			r.Set(field, Number(float64(v)))
		default:
			r.Set(field, Empty())
		}
	}
	return r
}

// Set stores a value. A field seen for the first time is appended to the order.
func (r *Row) Set(field string, v Value) {
	if field == "" {
		return
	}
	if _, ok := r.cells[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.cells[field] = v
}

// Get returns the value stored under field, or an empty value.
func (r *Row) Get(field string) Value {
	if r == nil || field == "" {
		return Value{}
	}
	return r.cells[field]
}

// Has reports whether the row carries the field at all.
func (r *Row) Has(field string) bool {
	if r == nil {
		return false
	}
	_, ok := r.cells[field]
	return ok
}

// Fields returns the field names in insertion order.
func (r *Row) Fields() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Clone returns an independent copy of the row.
func (r *Row) Clone() *Row {
	c := &Row{
		cells:  make(map[string]Value, len(r.cells)),
		fields: make([]string, len(r.fields)),
	}
	copy(c.fields, r.fields)
	for k, v := range r.cells {
		c.cells[k] = v
	}
	return c
}
