package table

import "strings"

// DataType is the declared storage type of a column.
type DataType string

const (
	Integer   DataType = "integer"
	Float     DataType = "float"
	Text      DataType = "text"
	Timestamp DataType = "timestamp"
)

// DataTypes lists every declared type in display order.
var DataTypes = []DataType{Integer, Float, Text, Timestamp}

// Valid reports whether d is one of the known declared types.
func (d DataType) Valid() bool {
	switch d {
	case Integer, Float, Text, Timestamp:
		return true
	}
	return false
}

// IsNumeric reports whether cells of this type hold numbers.
func (d DataType) IsNumeric() bool {
	return d == Integer || d == Float
}

// ParseDataType accepts the declared type names plus the dtype aliases users
// know from dataframe tools (int64, float64, object, datetime64[ns]).
func ParseDataType(s string) (DataType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "int64":
		return Integer, true
	case "float", "double", "float64", "number":
		return Float, true
	case "text", "string", "object", "category", "categorical":
		return Text, true
	case "timestamp", "datetime", "date", "datetime64", "datetime64[ns]":
		return Timestamp, true
	}
	return "", false
}

// SemanticType is the analysis category derived from a declared type.
type SemanticType string

const (
	Numeric     SemanticType = "numeric"
	Categorical SemanticType = "categorical"
	Temporal    SemanticType = "temporal"
)
