package plan

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/domain/table"
	"goeda/internal/errors"
	"goeda/internal/imputation"
	"goeda/internal/session"
)

const recipe = `
separator: ";"
decimal: ","
types:
  age: float
  notes: Delete
steps:
  - impute: {column: age, strategy: Mean}
  - rename: {from: city, to: location}
  - impute: {column: location, strategy: custom, value: Unknown}
  - reset: true
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(recipe))
	require.NoError(t, err)
	assert.Equal(t, ";", p.Separator)
	require.Len(t, p.Steps, 4)
	assert.Equal(t, imputation.Mean, p.Steps[0].Impute.Strategy)
	assert.Equal(t, imputation.CustomValue, p.Steps[2].Impute.Strategy)

	c, err := p.Coercions()
	require.NoError(t, err)
	assert.Equal(t, table.Plan{"age": table.Coercion(table.Float), "notes": table.Delete}, c)
	assert.Equal(t, []string{"notes"}, p.DeletedColumns())
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "steps:\n  - explode: true\n"},
		{"two actions", "steps:\n  - reset: true\n    delete: a\n"},
		{"empty step", "steps:\n  - {}\n"},
		{"bad strategy", "steps:\n  - impute: {column: a, strategy: knn}\n"},
		{"bad type", "types:\n  a: boolean\nsteps: []\n"},
		{"bad coerce type", "steps:\n  - coerce: {column: a, type: money}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	p, err := Parse([]byte(recipe))
	require.NoError(t, err)

	st := session.New(table.DefaultParser())
	require.NoError(t, st.Load(table.MustNew(
		table.NewColumn("age", table.Float, []table.Value{table.Number(25), table.Null(), table.Number(30)}),
		table.NewColumn("city", table.Text, []table.Value{table.String("NY"), table.Null(), table.String("NY")}),
	)))

	results, err := p.Apply(st)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, 1, results[0].Imputation.Filled)
	assert.Equal(t, "reset", results[3].Action)

	assert.False(t, st.IsEdited())
	assert.Equal(t, []string{"age", "location"}, st.Current().Names())
}

func TestApplyStopsAtFailingStep(t *testing.T) {
	p, err := Parse([]byte("steps:\n  - rename: {from: a, to: b}\n  - delete: missing\n  - reset: true\n"))
	require.NoError(t, err)

	st := session.New(table.DefaultParser())
	require.NoError(t, st.Load(table.MustNew(
		table.NewColumn("a", table.Integer, []table.Value{table.Number(1)}),
		table.NewColumn("c", table.Integer, []table.Value{table.Number(2)}),
	)))

	results, err := p.Apply(st)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrColumnNotFound))
	assert.Contains(t, err.Error(), "step 2")
	assert.Len(t, results, 1)
	assert.Equal(t, []string{"b", "c"}, st.Current().Names())
}
