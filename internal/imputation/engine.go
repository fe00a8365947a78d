// Package imputation replaces missing cells according to per-column
// strategies gated by the column's semantic type.
package imputation

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"goeda/domain/table"
	"goeda/internal/classifier"
	"goeda/internal/errors"
)

// Request asks for one strategy on one column. Value is only read for
// CustomValue.
type Request struct {
	Column   string   `json:"column" yaml:"column"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Result describes an applied imputation.
type Result struct {
	Table     *table.Table `json:"-"`
	Column    string       `json:"column"`
	Strategy  Strategy     `json:"strategy"`
	Filled    int          `json:"filled"`
	Dropped   int          `json:"dropped"`
	FillValue table.Value  `json:"fill_value"`
	Remaining int          `json:"remaining"`
	Promoted  bool         `json:"promoted_to_float"`
}

// Engine applies imputation strategies. Its parser coerces custom values.
type Engine struct {
	parser table.Parser
}

// NewEngine creates an engine that parses custom values with p.
func NewEngine(p table.Parser) *Engine {
	return &Engine{parser: p}
}

// Apply classifies the requested column, checks the strategy is legal for
// it and returns a new table. t is never modified.
func (e *Engine) Apply(t *table.Table, req Request) (Result, error) {
	sem, err := classifier.Classify(t, req.Column)
	if err != nil {
		return Result{}, err
	}
	if !IsLegal(sem, req.Strategy) {
		return Result{}, errors.StrategyNotApplicable(req.Column, string(req.Strategy), string(sem))
	}
	col, err := t.Column(req.Column)
	if err != nil {
		return Result{}, err
	}

	res := Result{Column: req.Column, Strategy: req.Strategy}

	if req.Strategy == DropRows {
		out := t.FilterRows(func(r int) bool { return !col.Cells[r].IsNull() })
		res.Table = out
		res.Dropped = t.NumRows() - out.NumRows()
		return res, nil
	}

	filled, fill, err := e.Impute(col, sem, req.Strategy, req.Value)
	if err != nil {
		return Result{}, err
	}
	out, err := t.Replace(filled)
	if err != nil {
		return Result{}, err
	}

	res.Table = out
	res.FillValue = fill
	res.Filled = col.NullCount() - filled.NullCount()
	res.Remaining = filled.NullCount()
	res.Promoted = col.Type == table.Integer && filled.Type == table.Float

	if res.Remaining > 0 && mustFillAll(req.Strategy) {
		return Result{}, errors.ImputationFailed(req.Column,
			fmt.Sprintf("%d missing values remain after %s", res.Remaining, req.Strategy.DisplayName()))
	}
	return res, nil
}

// Impute fills the nulls of one column and returns the new column plus the
// scalar fill value when the strategy has one. DropRows is table-level and
// is rejected here.
func (e *Engine) Impute(col table.Column, sem table.SemanticType, s Strategy, custom string) (table.Column, table.Value, error) {
	if !IsLegal(sem, s) {
		return table.Column{}, table.Null(), errors.StrategyNotApplicable(col.Name, string(s), string(sem))
	}

	switch s {
	case Mean, Median:
		xs := col.Floats()
		if len(xs) == 0 {
			return table.Column{}, table.Null(), noValues(col, s)
		}
		var (
			v   float64
			err error
		)
		if s == Mean {
			v, err = stats.Mean(xs)
		} else {
			v, err = stats.Median(xs)
		}
		if err != nil {
			return table.Column{}, table.Null(), errors.ImputationFailed(col.Name, err.Error())
		}
		return fillConstant(col, table.Number(v)), table.Number(v), nil

	case MostFrequent:
		v, ok := mode(col)
		if !ok {
			return table.Column{}, table.Null(), noValues(col, s)
		}
		return fillConstant(col, v), v, nil

	case Zero:
		return fillConstant(col, table.Number(0)), table.Number(0), nil

	case CustomValue:
		v, err := e.customValue(col, custom)
		if err != nil {
			return table.Column{}, table.Null(), err
		}
		return fillConstant(col, v), v, nil

	case ForwardFill:
		return forwardFill(col), table.Null(), nil

	case BackwardFill:
		return backwardFill(col), table.Null(), nil

	case Interpolate:
		return interpolate(col), table.Null(), nil
	}
	return table.Column{}, table.Null(), errors.StrategyNotApplicable(col.Name, string(s), string(sem))
}

func noValues(col table.Column, s Strategy) error {
	return errors.ImputationFailed(col.Name,
		fmt.Sprintf("%s needs at least one non-missing value", s.DisplayName()))
}

// customValue coerces the literal to the column's type. Integer columns
// accept fractional literals; the column is promoted to float on fill.
// Null tokens are rejected so the value survives an export round trip.
func (e *Engine) customValue(col table.Column, raw string) (table.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return table.Null(), errors.InvalidCustomValue(col.Name, raw, fmt.Errorf("a value is required"))
	}
	if e.parser.IsNull(raw) {
		return table.Null(), errors.InvalidCustomValue(col.Name, raw, fmt.Errorf("the value is read back as missing"))
	}
	typ := col.Type
	if typ == table.Integer {
		typ = table.Float
	}
	v, err := e.parser.Parse(raw, typ)
	if err != nil {
		return table.Null(), errors.InvalidCustomValue(col.Name, raw, err)
	}
	return v, nil
}

// mode returns the most frequent non-null value. Ties go to the value that
// appears first.
func mode(col table.Column) (table.Value, bool) {
	counts := make(map[string]int)
	first := make(map[string]table.Value)
	var order []string
	for _, v := range col.Cells {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		if _, seen := counts[k]; !seen {
			order = append(order, k)
			first[k] = v
		}
		counts[k]++
	}
	if len(order) == 0 {
		return table.Null(), false
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return first[best], true
}

func fillConstant(col table.Column, v table.Value) table.Column {
	cells := make([]table.Value, len(col.Cells))
	for i, c := range col.Cells {
		if c.IsNull() {
			cells[i] = v
		} else {
			cells[i] = c
		}
	}
	return promote(col.WithCells(cells))
}

func forwardFill(col table.Column) table.Column {
	cells := make([]table.Value, len(col.Cells))
	last := table.Null()
	for i, c := range col.Cells {
		if c.IsNull() {
			cells[i] = last
			continue
		}
		cells[i] = c
		last = c
	}
	return col.WithCells(cells)
}

func backwardFill(col table.Column) table.Column {
	cells := make([]table.Value, len(col.Cells))
	next := table.Null()
	for i := len(col.Cells) - 1; i >= 0; i-- {
		c := col.Cells[i]
		if c.IsNull() {
			cells[i] = next
			continue
		}
		cells[i] = c
		next = c
	}
	return col.WithCells(cells)
}

// interpolate fills interior gaps linearly by row position. Gaps before the
// first or after the last non-null value stay null.
func interpolate(col table.Column) table.Column {
	cells := make([]table.Value, len(col.Cells))
	copy(cells, col.Cells)
	prev := -1
	for i, c := range col.Cells {
		if c.IsNull() {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo, _ := col.Cells[prev].Float()
			hi, _ := c.Float()
			span := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				cells[k] = table.Number(lo + (hi-lo)*float64(k-prev)/span)
			}
		}
		prev = i
	}
	return promote(col.WithCells(cells))
}

// promote turns an integer column holding a fractional value into a float
// column.
func promote(col table.Column) table.Column {
	if col.Type != table.Integer {
		return col
	}
	for _, v := range col.Cells {
		if f, ok := v.Float(); ok && f != math.Trunc(f) {
			col.Type = table.Float
			return col
		}
	}
	return col
}
