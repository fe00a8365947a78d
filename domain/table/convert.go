package table

import (
	"fmt"
	"math"

	"goeda/internal/errors"
)

// Convert re-types a column. Cells round-trip through their text form,
// except numeric to numeric which keeps the number and rejects fractional
// values going to integer. Nulls stay null. The first cell that cannot be
// converted fails the whole column with an error naming the row.
func (p Parser) Convert(col Column, to DataType) (Column, error) {
	if !to.Valid() {
		return Column{}, errors.UnknownType(col.Name, string(to))
	}
	if col.Type == to {
		return col, nil
	}
	cells := make([]Value, len(col.Cells))
	for i, v := range col.Cells {
		if v.IsNull() {
			continue
		}
		out, err := p.convertCell(v, col.Type, to)
		if err != nil {
			appErr := errors.InvalidInput(fmt.Sprintf("row %d: cannot convert %q to %s: %v", i+1, p.Format(v, col.Type), to, err))
			appErr.Column = col.Name
			return Column{}, appErr
		}
		cells[i] = out
	}
	return NewColumn(col.Name, to, cells), nil
}

func (p Parser) convertCell(v Value, from, to DataType) (Value, error) {
	if from.IsNumeric() && to.IsNumeric() {
		f, _ := v.Float()
		if to == Integer && f != math.Trunc(f) {
			return Value{}, fmt.Errorf("not a whole number")
		}
		return Number(f), nil
	}
	if to == Text {
		return String(p.Format(v, from)), nil
	}
	return p.Parse(p.Format(v, from), to)
}
