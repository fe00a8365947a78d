package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ExportTimeLayout is the layout every timestamp cell is written with.
const ExportTimeLayout = "2006-01-02 15:04:05"

// DefaultNullTokens are the cell texts read as missing.
var DefaultNullTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A", "n/a"}

// DefaultTimeLayouts are tried in order when parsing timestamps.
var DefaultTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// Parser turns cell text into typed values and back.
type Parser struct {
	Decimal     rune
	TimeLayouts []string
	NullTokens  []string
}

// DefaultParser uses '.' decimals, the default layouts and null tokens.
func DefaultParser() Parser {
	return Parser{
		Decimal:     '.',
		TimeLayouts: DefaultTimeLayouts,
		NullTokens:  DefaultNullTokens,
	}
}

func (p Parser) decimal() rune {
	if p.Decimal == 0 {
		return '.'
	}
	return p.Decimal
}

func (p Parser) layouts() []string {
	if len(p.TimeLayouts) == 0 {
		return DefaultTimeLayouts
	}
	return p.TimeLayouts
}

// IsNull reports whether raw is blank or one of the configured null
// tokens. Cells are compared after trimming surrounding whitespace.
func (p Parser) IsNull(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return true
	}
	tokens := p.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	for _, tok := range tokens {
		if s == tok {
			return true
		}
	}
	return false
}

func (p Parser) normalizeNumber(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty number")
	}
	if d := p.decimal(); d != '.' {
		if strings.ContainsRune(s, '.') {
			return "", fmt.Errorf("%q uses '.' but the decimal marker is %q", raw, d)
		}
		s = strings.Replace(s, string(d), ".", 1)
	}
	return s, nil
}

// ParseFloat parses a number honouring the decimal marker.
func (p Parser) ParseFloat(raw string) (float64, error) {
	s, err := p.normalizeNumber(raw)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return f, nil
}

// ParseInt parses a whole number. Integral decimals such as "3.0" are
// accepted.
func (p Parser) ParseInt(raw string) (float64, error) {
	s, err := p.normalizeNumber(raw)
	if err != nil {
		return 0, err
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return f, nil
}

func (p Parser) isStrictInt(raw string) bool {
	s, err := p.normalizeNumber(raw)
	if err != nil {
		return false
	}
	_, err = strconv.ParseInt(s, 10, 64)
	return err == nil
}

// ParseTime tries each configured layout in order.
func (p Parser) ParseTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range p.layouts() {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q does not match any timestamp layout", raw)
}

// Parse converts raw into a value of typ. Null tokens are not consulted:
// use ParseCell for file input.
func (p Parser) Parse(raw string, typ DataType) (Value, error) {
	switch typ {
	case Integer:
		f, err := p.ParseInt(raw)
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	case Float:
		f, err := p.ParseFloat(raw)
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	case Timestamp:
		t, err := p.ParseTime(raw)
		if err != nil {
			return Value{}, err
		}
		return Time(t), nil
	case Text:
		return String(raw), nil
	}
	return Value{}, fmt.Errorf("unknown data type %q", typ)
}

// ParseCell is Parse with null-token detection.
func (p Parser) ParseCell(raw string, typ DataType) (Value, error) {
	if p.IsNull(raw) {
		return Null(), nil
	}
	return p.Parse(raw, typ)
}

// Infer picks the narrowest declared type that every non-null cell parses
// as: integer, then float, then timestamp when allowed, else text. A column
// with no non-null cells is text.
func (p Parser) Infer(raws []string, timestamps bool) DataType {
	isInt, isFloat, isTime := true, true, timestamps
	seen := false
	for _, raw := range raws {
		if p.IsNull(raw) {
			continue
		}
		seen = true
		if isInt && !p.isStrictInt(raw) {
			isInt = false
		}
		if isFloat {
			if _, err := p.ParseFloat(raw); err != nil {
				isFloat = false
			}
		}
		if isTime {
			if _, err := p.ParseTime(raw); err != nil {
				isTime = false
			}
		}
		if !isInt && !isFloat && !isTime {
			return Text
		}
	}
	switch {
	case !seen:
		return Text
	case isInt:
		return Integer
	case isFloat:
		return Float
	case isTime:
		return Timestamp
	}
	return Text
}

// Format renders a cell of a column typed typ for export. Float columns
// always carry a fractional part so they read back as floats.
func (p Parser) Format(v Value, typ DataType) string {
	if v.IsNull() {
		return ""
	}
	if f, ok := v.Float(); ok && v.kind == kindNumber {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if typ == Float && !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) {
			s += ".0"
		}
		if d := p.decimal(); d != '.' {
			s = strings.Replace(s, ".", string(d), 1)
		}
		return s
	}
	return v.String()
}
