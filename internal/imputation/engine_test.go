package imputation

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/domain/table"
	"goeda/internal/errors"
)

var (
	n   = table.Number
	s   = table.String
	nul = table.Null
)

func people() *table.Table {
	return table.MustNew(
		table.NewColumn("age", table.Integer, []table.Value{n(25), nul(), n(30)}),
		table.NewColumn("city", table.Text, []table.Value{s("NY"), s("LA"), s("NY")}),
	)
}

func floats(t *testing.T, col table.Column) []interface{} {
	t.Helper()
	out := make([]interface{}, len(col.Cells))
	for i, v := range col.Cells {
		if v.IsNull() {
			out[i] = nil
			continue
		}
		f, ok := v.Float()
		require.True(t, ok)
		out[i] = f
	}
	return out
}

func TestApplyMeanPromotesInteger(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	in := people()

	res, err := e.Apply(in, Request{Column: "age", Strategy: Mean})
	require.NoError(t, err)

	age, err := res.Table.Column("age")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{25.0, 27.5, 30.0}, floats(t, age))
	assert.Equal(t, table.Float, age.Type)
	assert.True(t, res.Promoted)
	assert.Equal(t, 1, res.Filled)
	assert.Equal(t, 0, res.Remaining)
	assert.True(t, res.FillValue.Equal(n(27.5)))

	orig, _ := in.Column("age")
	assert.True(t, orig.Cells[1].IsNull(), "input table must not change")
	assert.Equal(t, table.Integer, orig.Type)
}

func TestImputeNumericStrategies(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	col := table.NewColumn("x", table.Integer, []table.Value{nul(), n(1), nul(), n(4), n(4), nul()})

	tests := []struct {
		strategy Strategy
		custom   string
		want     []interface{}
		typ      table.DataType
	}{
		{Mean, "", []interface{}{3.0, 1.0, 3.0, 4.0, 4.0, 3.0}, table.Integer},
		{Median, "", []interface{}{4.0, 1.0, 4.0, 4.0, 4.0, 4.0}, table.Integer},
		{MostFrequent, "", []interface{}{4.0, 1.0, 4.0, 4.0, 4.0, 4.0}, table.Integer},
		{Zero, "", []interface{}{0.0, 1.0, 0.0, 4.0, 4.0, 0.0}, table.Integer},
		{ForwardFill, "", []interface{}{nil, 1.0, 1.0, 4.0, 4.0, 4.0}, table.Integer},
		{BackwardFill, "", []interface{}{1.0, 1.0, 4.0, 4.0, 4.0, nil}, table.Integer},
		{Interpolate, "", []interface{}{nil, 1.0, 2.5, 4.0, 4.0, nil}, table.Float},
		{CustomValue, "7", []interface{}{7.0, 1.0, 7.0, 4.0, 4.0, 7.0}, table.Integer},
		{CustomValue, "3.5", []interface{}{3.5, 1.0, 3.5, 4.0, 4.0, 3.5}, table.Float},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy)+tt.custom, func(t *testing.T) {
			out, _, err := e.Impute(col, table.Numeric, tt.strategy, tt.custom)
			require.NoError(t, err)
			assert.Equal(t, tt.want, floats(t, out))
			assert.Equal(t, tt.typ, out.Type)
		})
	}
}

func TestMostFrequentTieGoesToFirstAppearance(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	col := table.NewColumn("c", table.Text, []table.Value{s("b"), s("a"), nul(), s("a"), s("b")})

	out, fill, err := e.Impute(col, table.Categorical, MostFrequent, "")
	require.NoError(t, err)
	assert.True(t, fill.Equal(s("b")))
	assert.True(t, out.Cells[2].Equal(s("b")))
}

func TestEdgeNullsReportedAsRemaining(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	tbl := table.MustNew(table.NewColumn("x", table.Float, []table.Value{nul(), n(1), nul(), n(3), nul()}))

	for _, st := range []Strategy{ForwardFill, BackwardFill, Interpolate} {
		res, err := e.Apply(tbl, Request{Column: "x", Strategy: st})
		require.NoError(t, err, st)
		assert.Greater(t, res.Remaining, 0, st)
		assert.Equal(t, 3-res.Remaining, res.Filled, st)
	}
}

func TestNullFreeColumnUnchanged(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	day := func(d int) table.Value { return table.Time(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)) }
	cols := map[table.SemanticType]struct {
		col    table.Column
		custom string
	}{
		table.Numeric:     {table.NewColumn("x", table.Integer, []table.Value{n(1), n(2), n(4)}), "7.5"},
		table.Categorical: {table.NewColumn("x", table.Text, []table.Value{s("a"), s("b"), s("a")}), "z"},
		table.Temporal:    {table.NewColumn("x", table.Timestamp, []table.Value{day(1), day(2), day(3)}), "2024-02-01"},
	}

	for sem, tc := range cols {
		in := table.MustNew(tc.col)
		for _, st := range LegalStrategies(sem) {
			t.Run(string(sem)+"/"+string(st), func(t *testing.T) {
				res, err := e.Apply(in, Request{Column: "x", Strategy: st, Value: tc.custom})
				require.NoError(t, err)
				assert.True(t, res.Table.Equal(in))
				assert.Equal(t, 0, res.Filled)
				assert.Equal(t, 0, res.Dropped)
				assert.False(t, res.Promoted)
			})
		}
	}
}

func TestForwardThenBackwardFillLeavesNoNulls(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	tbl := table.MustNew(table.NewColumn("x", table.Float, []table.Value{nul(), nul(), n(1), nul(), n(3), nul()}))

	res, err := e.Apply(tbl, Request{Column: "x", Strategy: ForwardFill})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)

	res, err = e.Apply(res.Table, Request{Column: "x", Strategy: BackwardFill})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Remaining)
	x, _ := res.Table.Column("x")
	assert.Equal(t, []interface{}{1.0, 1.0, 1.0, 1.0, 3.0, 3.0}, floats(t, x))

	allNull := table.MustNew(table.NewColumn("x", table.Float, []table.Value{nul(), nul()}))
	res, err = e.Apply(allNull, Request{Column: "x", Strategy: ForwardFill})
	require.NoError(t, err)
	res, err = e.Apply(res.Table, Request{Column: "x", Strategy: BackwardFill})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining, "no value to carry in either direction")
}

func TestLegalityGate(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := table.MustNew(
		table.NewColumn("city", table.Text, []table.Value{s("NY"), nul()}),
		table.NewColumn("seen", table.Timestamp, []table.Value{table.Time(when), nul()}),
	)

	tests := []struct {
		column   string
		strategy Strategy
	}{
		{"city", Mean},
		{"city", Interpolate},
		{"seen", MostFrequent},
		{"seen", ForwardFill},
		{"seen", Zero},
	}
	for _, tt := range tests {
		t.Run(tt.column+"/"+string(tt.strategy), func(t *testing.T) {
			_, err := e.Apply(tbl, Request{Column: tt.column, Strategy: tt.strategy})
			assert.True(t, stderrors.Is(err, errors.ErrStrategyNotApplicable))
		})
	}
}

func TestCustomValue(t *testing.T) {
	p := table.DefaultParser()
	p.Decimal = ','
	e := NewEngine(p)

	num := table.NewColumn("x", table.Float, []table.Value{nul(), n(1)})
	out, fill, err := e.Impute(num, table.Numeric, CustomValue, "2,5")
	require.NoError(t, err)
	assert.True(t, fill.Equal(n(2.5)))
	assert.True(t, out.Cells[0].Equal(n(2.5)))

	_, _, err = e.Impute(num, table.Numeric, CustomValue, "abc")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidCustomValue))
	assert.Equal(t, "x", errors.GetColumn(err))

	_, _, err = e.Impute(num, table.Numeric, CustomValue, " ")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidCustomValue))

	ts := table.NewColumn("seen", table.Timestamp, []table.Value{nul()})
	out, _, err = e.Impute(ts, table.Temporal, CustomValue, "2024-05-01")
	require.NoError(t, err)
	got, ok := out.Cells[0].Time()
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	_, _, err = e.Impute(ts, table.Temporal, CustomValue, "yesterday")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidCustomValue))

	txt := table.NewColumn("city", table.Text, []table.Value{nul(), s("NY")})
	out, _, err = e.Impute(txt, table.Categorical, CustomValue, "Unknown")
	require.NoError(t, err)
	assert.True(t, out.Cells[0].Equal(s("Unknown")))
}

func TestCustomValueRejectsNullToken(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	tbl := table.MustNew(table.NewColumn("city", table.Text, []table.Value{s("NY"), nul()}))

	for _, lit := range []string{"NA", "null", " n/a "} {
		_, err := e.Apply(tbl, Request{Column: "city", Strategy: CustomValue, Value: lit})
		assert.True(t, stderrors.Is(err, errors.ErrInvalidCustomValue), "literal %q", lit)
	}
}

func TestDropRowsIsTableWide(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	res, err := e.Apply(people(), Request{Column: "age", Strategy: DropRows})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 2, res.Table.NumRows())
	city, _ := res.Table.Column("city")
	assert.Equal(t, []table.Value{s("NY"), s("NY")}, city.Cells)
	assert.True(t, DropRows.CrossColumn())
}

func TestAllNullColumnCannotProduceStatistic(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	tbl := table.MustNew(table.NewColumn("x", table.Float, []table.Value{nul(), nul()}))

	for _, st := range []Strategy{Mean, Median, MostFrequent} {
		_, err := e.Apply(tbl, Request{Column: "x", Strategy: st})
		assert.True(t, stderrors.Is(err, errors.ErrImputationFailed), st)
	}

	res, err := e.Apply(tbl, Request{Column: "x", Strategy: ForwardFill})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)
}

func TestUnknownColumn(t *testing.T) {
	e := NewEngine(table.DefaultParser())
	_, err := e.Apply(people(), Request{Column: "salary", Strategy: Mean})
	assert.True(t, stderrors.Is(err, errors.ErrColumnNotFound))
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"mean":                 Mean,
		"Forward Fill":         ForwardFill,
		"most frequent":        MostFrequent,
		"Linear Interpolation": Interpolate,
		"drop_rows":            DropRows,
		"mode":                 MostFrequent,
	} {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStrategy("knn")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	ds, err := Describe(people())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "age", ds[0].Name)
	assert.Equal(t, table.Numeric, ds[0].Semantic)
	assert.Equal(t, 1, ds[0].Nulls)
	assert.Equal(t, []Strategy{MostFrequent, CustomValue, DropRows}, ds[1].Strategies)
}
