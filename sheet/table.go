// Package sheet holds the in-memory table shared by the diff and validation
// engines.
package sheet

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Row maps a column name to the value held in that cell. Columns missing
// from the map are absent.
type Row map[string]Value

// Table is an ordered set of uniquely named columns and an ordered set of
// rows. Row order is the order of the source and is significant for
// positional comparisons. Tables are never mutated once built.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    []Row
}

// New builds a table. Column names must be unique and every row may only
// reference known columns.
func New(name string, columns []string, rows ...Row) (*Table, error) {
	t := &Table{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([]Row, 0, len(rows)),
	}
	for i, col := range columns {
		if _, ok := t.index[col]; ok {
			return nil, errors.Newf("duplicate column %q in %s", col, name)
		}
		t.index[col] = i
	}
	for i, r := range rows {
		for col := range r {
			if _, ok := t.index[col]; !ok {
				return nil, errors.Newf("row %d of %s references unknown column %q", i+1, name, col)
			}
		}
		t.rows = append(t.rows, r)
	}
	return t, nil
}

// MustNew is New, panicking on error. Intended for tests and literals.
func MustNew(name string, columns []string, rows ...Row) *Table {
	t, err := New(name, columns, rows...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Name() string {
	return t.name
}

// Columns returns the column names in order. The slice must not be modified.
func (t *Table) Columns() []string {
	return t.columns
}

// Rows returns the rows in source order. The rows must not be modified.
func (t *Table) Rows() []Row {
	return t.rows
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Get returns the value at the given 0-based row and column, or nil if
// either is out of range.
func (t *Table) Get(row int, col string) Value {
	if row < 0 || row >= len(t.rows) {
		return nil
	}
	return t.rows[row][col]
}

// Column returns every value of a column in row order.
func (t *Table) Column(col string) []Value {
	if !t.HasColumn(col) {
		return nil
	}
	ret := make([]Value, len(t.rows))
	for i, r := range t.rows {
		ret[i] = r[col]
	}
	return ret
}

func (t *Table) String() string {
	return fmt.Sprintf("%s (%d rows, %d columns)", t.name, len(t.rows), len(t.columns))
}
