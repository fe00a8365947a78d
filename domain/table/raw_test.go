package table

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/internal/errors"
)

func TestNewRawNormalizesHeader(t *testing.T) {
	raw, err := NewRaw([]string{"a", "", "a", " a "}, [][]string{{"1", "2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2"}, raw.Header)
	assert.Equal(t, []string{"1", "2", "", ""}, raw.Records[0])

	_, err = NewRaw([]string{"a"}, [][]string{{"1", "2"}})
	assert.True(t, stderrors.Is(err, errors.ErrLoad))

	_, err = NewRaw(nil, nil)
	assert.True(t, stderrors.Is(err, errors.ErrLoad))
}

func TestRawBuild(t *testing.T) {
	raw, err := NewRaw(
		[]string{"age", "city", "joined", "note"},
		[][]string{
			{"25", "NY", "2024-01-02", "x"},
			{"NA", "LA", "", "y"},
			{"30", "NY", "2024-03-04", ""},
		},
	)
	require.NoError(t, err)

	tbl, err := raw.Build(DefaultParser(), Plan{"note": Delete, "age": Coercion(Float)}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "city", "joined"}, tbl.Names())

	age, _ := tbl.Column("age")
	assert.Equal(t, Float, age.Type)
	assert.Equal(t, 1, age.NullCount())

	joined, _ := tbl.Column("joined")
	assert.Equal(t, Timestamp, joined.Type)

	_, err = raw.Build(DefaultParser(), Plan{"city": Coercion(Integer)}, true)
	require.Error(t, err)
	assert.Equal(t, errors.CodeLoadError, errors.GetCode(err))
	assert.Equal(t, "city", errors.GetColumn(err))

	_, err = raw.Build(DefaultParser(), Plan{"age": Delete, "city": Delete, "joined": Delete, "note": Delete}, true)
	assert.True(t, stderrors.Is(err, errors.ErrLoad))

	_, err = raw.Build(DefaultParser(), Plan{"salary": Delete}, true)
	assert.True(t, stderrors.Is(err, errors.ErrColumnNotFound))
}

func TestParseCoercion(t *testing.T) {
	c, err := ParseCoercion("Delete")
	require.NoError(t, err)
	assert.Equal(t, Delete, c)

	c, err = ParseCoercion("float64")
	require.NoError(t, err)
	assert.Equal(t, Coercion(Float), c)

	_, err = ParseCoercion("bool")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownType))
}
