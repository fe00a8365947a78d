package delimited

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/domain/table"
	"goeda/internal/errors"
)

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ',', false},
		{";", ';', false},
		{`\t`, '\t', false},
		{"tab", '\t', false},
		{"|", '|', false},
		{";;", 0, true},
		{`"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeparator(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, '\t', SeparatorFor("data.TSV", ','))
	assert.Equal(t, ';', SeparatorFor("data.csv", ';'))
}

func TestReadEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \n", "\xef\xbb\xbf"} {
		_, err := Read(strings.NewReader(in), ',')
		assert.True(t, stderrors.Is(err, errors.ErrLoad), "input %q", in)
	}
}

func TestReadSemicolonWithDecimalComma(t *testing.T) {
	in := "name;price;when\nA;1,5;2024-01-02\nB;;NA\nC;2,25;2024-02-03\n"
	raw, err := Read(strings.NewReader(in), ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "price", "when"}, raw.Header)
	require.Len(t, raw.Records, 3)

	p := table.DefaultParser()
	p.Decimal = ','
	tbl, err := raw.Build(p, nil, true)
	require.NoError(t, err)

	price, _ := tbl.Column("price")
	assert.Equal(t, table.Float, price.Type)
	assert.Equal(t, []float64{1.5, 2.25}, price.Floats())

	when, _ := tbl.Column("when")
	assert.Equal(t, table.Timestamp, when.Type)
	assert.Equal(t, 1, when.NullCount())
}

func TestWriterRoundTrip(t *testing.T) {
	p := table.DefaultParser()
	p.Decimal = ','
	tbl := table.MustNew(
		table.NewColumn("age", table.Float, []table.Value{table.Number(25), table.Number(27.5), table.Null()}),
		table.NewColumn("city", table.Text, []table.Value{table.String("NY"), table.String("Los Angeles; CA"), table.String("NY")}),
		table.NewColumn("seen", table.Timestamp, []table.Value{
			table.Time(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), table.Null(), table.Null(),
		}),
	)

	out, err := NewWriter(';', p).Encode(tbl)
	require.NoError(t, err)
	assert.Equal(t, "age;city;seen\n25,0;NY;2024-01-02 03:04:05\n27,5;\"Los Angeles; CA\";\n;NY;\n", string(out))

	raw, err := Read(strings.NewReader(string(out)), ';')
	require.NoError(t, err)
	back, err := raw.Build(p, nil, true)
	require.NoError(t, err)
	assert.True(t, back.Equal(tbl))
}
