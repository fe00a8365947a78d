package imputation

import (
	"fmt"
	"strings"

	"goeda/domain/table"
	"goeda/internal/errors"
)

// Strategy is a rule for replacing missing cells.
type Strategy string

const (
	Mean         Strategy = "mean"
	Median       Strategy = "median"
	MostFrequent Strategy = "most_frequent"
	Zero         Strategy = "zero"
	ForwardFill  Strategy = "ffill"
	BackwardFill Strategy = "bfill"
	Interpolate  Strategy = "interpolate"
	CustomValue  Strategy = "custom"
	DropRows     Strategy = "drop_rows"
)

var displayNames = map[Strategy]string{
	Mean:         "Mean",
	Median:       "Median",
	MostFrequent: "Most Frequent",
	Zero:         "Zero",
	ForwardFill:  "Forward Fill",
	BackwardFill: "Backward Fill",
	Interpolate:  "Linear Interpolation",
	CustomValue:  "Custom Value",
	DropRows:     "Drop Rows",
}

// legal is the one capability table. Order is the order strategies are
// offered in.
var legal = map[table.SemanticType][]Strategy{
	table.Numeric:     {Mean, Median, MostFrequent, Zero, ForwardFill, BackwardFill, Interpolate, CustomValue, DropRows},
	table.Categorical: {MostFrequent, CustomValue, DropRows},
	table.Temporal:    {CustomValue, DropRows},
}

// DisplayName is the label shown in selection widgets.
func (s Strategy) DisplayName() string {
	if n, ok := displayNames[s]; ok {
		return n
	}
	return string(s)
}

// CrossColumn reports whether the strategy changes cells outside the target
// column. Only DropRows does: it removes whole rows.
func (s Strategy) CrossColumn() bool { return s == DropRows }

// NeedsValue reports whether the strategy requires a custom literal.
func (s Strategy) NeedsValue() bool { return s == CustomValue }

// ParseStrategy accepts identifiers ("ffill") and display names
// ("Forward Fill"), case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for id, name := range displayNames {
		if norm == string(id) || norm == strings.ToLower(name) {
			return id, nil
		}
	}
	switch norm {
	case "mode":
		return MostFrequent, nil
	case "forward_fill":
		return ForwardFill, nil
	case "backward_fill":
		return BackwardFill, nil
	case "linear", "linear_interpolation":
		return Interpolate, nil
	case "custom_value":
		return CustomValue, nil
	case "drop", "dropna":
		return DropRows, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown imputation strategy %q", s))
}

// LegalStrategies returns the strategies offered for a semantic type. The
// slice is a copy.
func LegalStrategies(sem table.SemanticType) []Strategy {
	src := legal[sem]
	out := make([]Strategy, len(src))
	copy(out, src)
	return out
}

// IsLegal reports whether s may be applied to a column of type sem.
func IsLegal(sem table.SemanticType, s Strategy) bool {
	for _, l := range legal[sem] {
		if l == s {
			return true
		}
	}
	return false
}

// mustFillAll lists strategies whose post-condition is zero remaining nulls.
func mustFillAll(s Strategy) bool {
	switch s {
	case Mean, Median, MostFrequent, Zero, CustomValue, DropRows:
		return true
	}
	return false
}

// UnmarshalText lets JSON and YAML inputs use any spelling ParseStrategy
// accepts.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
