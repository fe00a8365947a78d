package table

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindNumber
	kindText
	kindTime
)

// Value is one cell. The zero Value is null.
type Value struct {
	kind valueKind
	num  float64
	str  string
	ts   time.Time
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Number wraps a float. NaN is treated as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: kindNumber, num: f}
}

// String wraps a text cell.
func String(s string) Value { return Value{kind: kindText, str: s} }

// Time wraps a timestamp cell.
func Time(t time.Time) Value { return Value{kind: kindTime, ts: t} }

// IsNull reports whether the cell is missing.
func (v Value) IsNull() bool { return v.kind == kindNull }

// Float returns the numeric payload. Timestamps convert to epoch seconds.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.num, true
	case kindTime:
		return float64(v.ts.UnixNano()) / 1e9, true
	}
	return 0, false
}

// Text returns the text payload of a text cell.
func (v Value) Text() (string, bool) {
	if v.kind != kindText {
		return "", false
	}
	return v.str, true
}

// Time returns the payload of a timestamp cell.
func (v Value) Time() (time.Time, bool) {
	if v.kind != kindTime {
		return time.Time{}, false
	}
	return v.ts, true
}

// Equal compares kind and payload. Two nulls are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case kindNumber:
		return v.num == o.num
	case kindText:
		return v.str == o.str
	case kindTime:
		return v.ts.Equal(o.ts)
	}
	return true
}

// Key returns a comparable identity for counting distinct values.
func (v Value) Key() string {
	switch v.kind {
	case kindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case kindText:
		return "s:" + v.str
	case kindTime:
		return "t:" + strconv.FormatInt(v.ts.UnixNano(), 10)
	}
	return ""
}

// String renders the cell with a '.' decimal marker; nulls render empty.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindText:
		return v.str
	case kindTime:
		return v.ts.Format(ExportTimeLayout)
	}
	return ""
}

// MarshalJSON encodes nulls as null, numbers as numbers, everything else as
// strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		if math.IsInf(v.num, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	case kindText:
		return json.Marshal(v.str)
	case kindTime:
		return json.Marshal(v.ts.Format(ExportTimeLayout))
	}
	return []byte("null"), nil
}
