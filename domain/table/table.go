package table

import (
	"fmt"

	"goeda/internal/errors"
)

// Table is an ordered set of uniquely named columns of equal length.
// Tables are values: every operation returns a new table and leaves the
// receiver untouched.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New validates and assembles a table.
func New(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c.Name == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("column %d has an empty name", i))
		}
		if !c.Type.Valid() {
			return nil, errors.UnknownType(c.Name, string(c.Type))
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, errors.DuplicateColumnName(c.Name)
		}
		if i == 0 {
			t.rows = len(c.Cells)
		} else if len(c.Cells) != t.rows {
			return nil, errors.InvalidInput(fmt.Sprintf("column %q has %d cells, expected %d", c.Name, len(c.Cells), t.rows))
		}
		t.index[c.Name] = i
		t.columns[i] = c
	}
	return t, nil
}

// MustNew is New for literals in tests and fixtures.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.columns) }

// Names returns column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. The slice is a copy; cells are shared.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks a column up by name.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, errors.ColumnNotFound(name)
	}
	return t.columns[i], nil
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Cells[i]
	}
	return row
}

// Replace swaps in a column with the same name as an existing one.
func (t *Table) Replace(col Column) (*Table, error) {
	i, ok := t.index[col.Name]
	if !ok {
		return nil, errors.ColumnNotFound(col.Name)
	}
	cols := t.Columns()
	cols[i] = col
	return New(cols...)
}

// Rename changes a column name, keeping its position. Renaming to the same name
// returns the receiver.
func (t *Table) Rename(oldName, newName string) (*Table, error) {
	i, ok := t.index[oldName]
	if !ok {
		return nil, errors.ColumnNotFound(oldName)
	}
	if oldName == newName {
		return t, nil
	}
	if newName == "" {
		return nil, errors.InvalidInput("new column name cannot be empty")
	}
	if t.Has(newName) {
		return nil, errors.DuplicateColumnName(newName)
	}
	cols := t.Columns()
	cols[i].Name = newName
	return New(cols...)
}

// Drop removes a column.
func (t *Table) Drop(name string) (*Table, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.ColumnNotFound(name)
	}
	cols := make([]Column, 0, len(t.columns)-1)
	cols = append(cols, t.columns[:i]...)
	cols = append(cols, t.columns[i+1:]...)
	return New(cols...)
}

// Select returns the named columns in the requested order.
func (t *Table) Select(names []string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// FilterRows keeps the rows for which keep returns true, preserving order.
func (t *Table) FilterRows(keep func(row int) bool) *Table {
	kept := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == t.rows {
		return t
	}
	cols := make([]Column, len(t.columns))
	for j, c := range t.columns {
		cells := make([]Value, len(kept))
		for k, r := range kept {
			cells[k] = c.Cells[r]
		}
		cols[j] = c.WithCells(cells)
	}
	return MustNew(cols...)
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= t.rows {
		return t
	}
	cols := make([]Column, len(t.columns))
	for j, c := range t.columns {
		cols[j] = c.WithCells(c.Cells[:n:n])
	}
	return MustNew(cols...)
}

// Equal compares shape, names, types and cells.
func (t *Table) Equal(o *Table) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i := range t.columns {
		if !t.columns[i].Equal(o.columns[i]) {
			return false
		}
	}
	return true
}
