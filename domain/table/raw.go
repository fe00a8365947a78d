package table

import (
	"fmt"
	"strings"

	"goeda/internal/errors"
)

// Raw is a parsed but untyped dataset: a header and rows of cell text, as
// read from a delimited file or a spreadsheet.
type Raw struct {
	Header  []string
	Records [][]string
}

// NewRaw normalizes a header and records. Blank header cells become
// "Unnamed: i", repeated names get ".1", ".2" suffixes, short records are
// padded with empty cells. A record longer than the header is an error.
func NewRaw(header []string, records [][]string) (*Raw, error) {
	if len(header) == 0 {
		return nil, errors.LoadError("the file has no header row", nil)
	}
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}
		name := base
		for used[name] {
			suffix[base]++
			name = fmt.Sprintf("%s.%d", base, suffix[base])
		}
		used[name] = true
		names[i] = name
	}

	out := make([][]string, len(records))
	for r, rec := range records {
		if len(rec) > len(names) {
			return nil, errors.LoadError(fmt.Sprintf("row %d has %d fields, header has %d", r+1, len(rec), len(names)), nil)
		}
		row := rec
		if len(rec) < len(names) {
			row = make([]string, len(names))
			copy(row, rec)
		}
		out[r] = row
	}
	return &Raw{Header: names, Records: out}, nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// Column returns the cell texts of column i.
func (r *Raw) Column(i int) []string {
	out := make([]string, len(r.Records))
	for j, rec := range r.Records {
		out[j] = rec[i]
	}
	return out
}

// Infer guesses the declared type of every column.
func (r *Raw) Infer(p Parser, timestamps bool) []DataType {
	out := make([]DataType, len(r.Header))
	for i := range r.Header {
		out[i] = p.Infer(r.Column(i), timestamps)
	}
	return out
}

// Coercion is the load-time choice for one column: a declared type, or
// Delete to leave the column out.
type Coercion string

// Delete drops a column at load.
const Delete Coercion = "delete"

// ParseCoercion accepts any ParseDataType spelling or "delete".
func ParseCoercion(s string) (Coercion, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(Delete)) {
		return Delete, nil
	}
	d, ok := ParseDataType(s)
	if !ok {
		return "", errors.UnknownType("", s)
	}
	return Coercion(d), nil
}

// Plan maps column names to coercions. Columns not in the plan keep their
// inferred type.
type Plan map[string]Coercion

// Build types every column and assembles the baseline table. A cell that
// does not parse as its column's type fails the load, naming column and
// row. Deleting every column is a load error.
func (r *Raw) Build(p Parser, plan Plan, timestamps bool) (*Table, error) {
	for name := range plan {
		if !contains(r.Header, name) {
			return nil, errors.ColumnNotFound(name)
		}
	}
	inferred := r.Infer(p, timestamps)
	cols := make([]Column, 0, len(r.Header))
	for i, name := range r.Header {
		typ := inferred[i]
		if c, ok := plan[name]; ok {
			if c == Delete {
				continue
			}
			typ = DataType(c)
			if !typ.Valid() {
				return nil, errors.UnknownType(name, string(c))
			}
		}
		cells := make([]Value, len(r.Records))
		for j, rec := range r.Records {
			v, err := p.ParseCell(rec[i], typ)
			if err != nil {
				loadErr := errors.LoadError(fmt.Sprintf("row %d: %q is not a valid %s", j+1, rec[i], typ), err)
				loadErr.Column = name
				return nil, loadErr
			}
			cells[j] = v
		}
		cols = append(cols, NewColumn(name, typ, cells))
	}
	if len(cols) == 0 {
		return nil, errors.LoadError("every column was deleted", nil)
	}
	return New(cols...)
}
