package table

// Column is a named, typed sequence of cells. Cells may be shared between
// tables and must not be mutated after construction.
type Column struct {
	Name  string
	Type  DataType
	Cells []Value
}

// NewColumn builds a column.
func NewColumn(name string, typ DataType, cells []Value) Column {
	return Column{Name: name, Type: typ, Cells: cells}
}

// Len returns the number of cells.
func (c Column) Len() int { return len(c.Cells) }

// NullCount counts missing cells.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.Cells {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// NonNull returns the non-missing cells in order.
func (c Column) NonNull() []Value {
	out := make([]Value, 0, len(c.Cells))
	for _, v := range c.Cells {
		if !v.IsNull() {
			out = append(out, v)
		}
	}
	return out
}

// Floats returns the numeric view of every non-missing cell that has one.
func (c Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Cells))
	for _, v := range c.Cells {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// WithCells returns a copy of c holding cells.
func (c Column) WithCells(cells []Value) Column {
	return Column{Name: c.Name, Type: c.Type, Cells: cells}
}

// Equal compares name, type and every cell.
func (c Column) Equal(o Column) bool {
	if c.Name != o.Name || c.Type != o.Type || len(c.Cells) != len(o.Cells) {
		return false
	}
	for i := range c.Cells {
		if !c.Cells[i].Equal(o.Cells[i]) {
			return false
		}
	}
	return true
}
