package imputation

import (
	"goeda/domain/table"
	"goeda/internal/classifier"
	"goeda/internal/errors"
)

// Descriptor is the derived view of one column offered to the presentation
// layer.
type Descriptor struct {
	Name       string             `json:"name"`
	Type       table.DataType     `json:"type"`
	Semantic   table.SemanticType `json:"semantic"`
	Nulls      int                `json:"nulls"`
	Strategies []Strategy         `json:"strategies"`
}

// Describe builds descriptors for every column in table order.
func Describe(t *table.Table) ([]Descriptor, error) {
	cols := t.Columns()
	out := make([]Descriptor, 0, len(cols))
	for _, c := range cols {
		sem, ok := classifier.SemanticOf(c.Type)
		if !ok {
			return nil, errors.UnknownType(c.Name, string(c.Type))
		}
		out = append(out, Descriptor{
			Name:       c.Name,
			Type:       c.Type,
			Semantic:   sem,
			Nulls:      c.NullCount(),
			Strategies: LegalStrategies(sem),
		})
	}
	return out, nil
}
