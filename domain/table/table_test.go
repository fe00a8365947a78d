package table

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/internal/errors"
)

func sample() *Table {
	return MustNew(
		NewColumn("age", Integer, []Value{Number(25), Null(), Number(30)}),
		NewColumn("city", Text, []Value{String("NY"), String("LA"), String("NY")}),
	)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
		code string
	}{
		{
			name: "duplicate names",
			cols: []Column{NewColumn("a", Integer, nil), NewColumn("a", Text, nil)},
			code: errors.CodeDuplicateColumnName,
		},
		{
			name: "ragged lengths",
			cols: []Column{NewColumn("a", Integer, []Value{Null()}), NewColumn("b", Text, nil)},
			code: errors.CodeInvalidInput,
		},
		{
			name: "unknown type",
			cols: []Column{NewColumn("a", DataType("boolean"), nil)},
			code: errors.CodeUnknownType,
		},
		{
			name: "empty name",
			cols: []Column{NewColumn("", Text, nil)},
			code: errors.CodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cols...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestRename(t *testing.T) {
	tbl := sample()

	renamed, err := tbl.Rename("city", "location")
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "location"}, renamed.Names())
	assert.Equal(t, []string{"age", "city"}, tbl.Names(), "receiver must be untouched")

	same, err := tbl.Rename("city", "city")
	require.NoError(t, err)
	assert.True(t, same.Equal(tbl))

	_, err = tbl.Rename("city", "age")
	assert.True(t, stderrors.Is(err, errors.ErrDuplicateColumnName))

	_, err = tbl.Rename("country", "nation")
	assert.True(t, stderrors.Is(err, errors.ErrColumnNotFound))
}

func TestDropSelectFilter(t *testing.T) {
	tbl := sample()

	dropped, err := tbl.Drop("age")
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, dropped.Names())
	assert.Equal(t, 3, dropped.NumRows())

	sel, err := tbl.Select([]string{"city", "age"})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "age"}, sel.Names())

	age, _ := tbl.Column("age")
	filtered := tbl.FilterRows(func(r int) bool { return !age.Cells[r].IsNull() })
	assert.Equal(t, 2, filtered.NumRows())
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []Value{String("NY")}, filtered.Row(0)[1:2], "first kept row")
	city, err := filtered.Column("city")
	require.NoError(t, err)
	assert.Equal(t, []Value{String("NY"), String("NY")}, city.Cells)

	assert.Equal(t, 1, tbl.Head(1).NumRows())
	assert.Equal(t, 3, tbl.Head(10).NumRows())
}

func TestColumnNullCount(t *testing.T) {
	age, err := sample().Column("age")
	require.NoError(t, err)
	assert.Equal(t, 1, age.NullCount())
	assert.Equal(t, []float64{25, 30}, age.Floats())
}

func TestParserInfer(t *testing.T) {
	p := DefaultParser()
	tests := []struct {
		name       string
		raws       []string
		timestamps bool
		want       DataType
	}{
		{"integers with nulls", []string{"1", "", "NA", "3"}, true, Integer},
		{"floats", []string{"1", "2.5"}, true, Float},
		{"integral decimals are floats", []string{"3.0"}, true, Float},
		{"timestamps", []string{"2024-01-02", "2024-02-03 10:00:00"}, true, Timestamp},
		{"timestamps disabled", []string{"2024-01-02"}, false, Text},
		{"text", []string{"1", "x"}, true, Text},
		{"all null", []string{"", "null"}, true, Text},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Infer(tt.raws, tt.timestamps))
		})
	}
}

func TestParserDecimalMarker(t *testing.T) {
	p := DefaultParser()
	p.Decimal = ','

	f, err := p.ParseFloat("27,5")
	require.NoError(t, err)
	assert.Equal(t, 27.5, f)

	_, err = p.ParseFloat("27.5")
	assert.Error(t, err)

	assert.Equal(t, "27,5", p.Format(Number(27.5), Float))
	assert.Equal(t, "25,0", p.Format(Number(25), Float))
	assert.Equal(t, "25", p.Format(Number(25), Integer))
}

func TestParseCellNullTokens(t *testing.T) {
	p := DefaultParser()
	for _, tok := range []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A", "n/a", "  "} {
		v, err := p.ParseCell(tok, Integer)
		require.NoError(t, err)
		assert.True(t, v.IsNull(), "token %q", tok)
	}
	v, err := p.ParseCell("NA", Text)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = p.Parse("NA", Text)
	require.NoError(t, err)
	assert.False(t, v.IsNull(), "Parse keeps literal text")
}

func TestConvert(t *testing.T) {
	p := DefaultParser()

	age, _ := sample().Column("age")
	asText, err := p.Convert(age, Text)
	require.NoError(t, err)
	assert.Equal(t, []Value{String("25"), Null(), String("30")}, asText.Cells)

	back, err := p.Convert(asText, Integer)
	require.NoError(t, err)
	assert.True(t, back.Equal(age))

	frac := NewColumn("x", Float, []Value{Number(1), Number(2.5)})
	_, err = p.Convert(frac, Integer)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Equal(t, "x", errors.GetColumn(err))
	assert.Contains(t, err.Error(), "row 2")

	ts := NewColumn("when", Text, []Value{String("2024-03-01 12:30:00")})
	conv, err := p.Convert(ts, Timestamp)
	require.NoError(t, err)
	got, ok := conv.Cells[0].Time()
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)))
}

func TestValueJSON(t *testing.T) {
	b, err := Null().MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = Number(27.5).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "27.5", string(b))

	assert.True(t, Number(nanValue()).IsNull())
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}

func TestParseDataType(t *testing.T) {
	for in, want := range map[string]DataType{
		"int64":          Integer,
		"float64":        Float,
		"object":         Text,
		"datetime64[ns]": Timestamp,
		" Integer ":      Integer,
	} {
		got, ok := ParseDataType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseDataType("boolean")
	assert.False(t, ok)
}

func TestBlankCellsAlwaysNull(t *testing.T) {
	p := Parser{NullTokens: []string{"NA"}}
	for _, raw := range []string{"", "   ", "NA"} {
		assert.True(t, p.IsNull(raw), "cell %q", raw)
	}
	assert.False(t, p.IsNull("null"))

	v, err := p.ParseCell("", Integer)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.Equal(t, Integer, p.Infer([]string{"1", "", "3"}, false))
}
