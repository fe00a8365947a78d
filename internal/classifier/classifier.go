// Package classifier maps declared column types to semantic types and
// answers the bulk-selection queries built on them.
package classifier

import (
	"fmt"

	"goeda/domain/table"
	"goeda/internal/errors"
)

// Selector names a bulk column selection.
type Selector string

const (
	SelectAll         Selector = "all"
	SelectNumeric     Selector = "numeric"
	SelectCategorical Selector = "categorical"
	SelectTemporal    Selector = "temporal"
)

// ParseSelector accepts the selector names plus the labels of the original
// selection buttons ("numerical", "date").
func ParseSelector(s string) (Selector, error) {
	switch s {
	case "all", "":
		return SelectAll, nil
	case "numeric", "numerical":
		return SelectNumeric, nil
	case "categorical":
		return SelectCategorical, nil
	case "temporal", "date", "datetime":
		return SelectTemporal, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown column selection %q", s))
}

// SemanticOf maps a declared type to its semantic type.
func SemanticOf(d table.DataType) (table.SemanticType, bool) {
	switch d {
	case table.Integer, table.Float:
		return table.Numeric, true
	case table.Text:
		return table.Categorical, true
	case table.Timestamp:
		return table.Temporal, true
	}
	return "", false
}

// Classify returns the semantic type of a column.
func Classify(t *table.Table, column string) (table.SemanticType, error) {
	col, err := t.Column(column)
	if err != nil {
		return "", err
	}
	sem, ok := SemanticOf(col.Type)
	if !ok {
		return "", errors.UnknownType(column, string(col.Type))
	}
	return sem, nil
}

// ColumnsOfType returns, in table order, the columns of one semantic type.
func ColumnsOfType(t *table.Table, sem table.SemanticType) []string {
	var names []string
	for _, c := range t.Columns() {
		if s, ok := SemanticOf(c.Type); ok && s == sem {
			names = append(names, c.Name)
		}
	}
	return names
}

// Select resolves a bulk selection against t.
func Select(t *table.Table, sel Selector) ([]string, error) {
	switch sel {
	case SelectAll:
		return t.Names(), nil
	case SelectNumeric:
		return ColumnsOfType(t, table.Numeric), nil
	case SelectCategorical:
		return ColumnsOfType(t, table.Categorical), nil
	case SelectTemporal:
		return ColumnsOfType(t, table.Temporal), nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown column selection %q", sel))
}
