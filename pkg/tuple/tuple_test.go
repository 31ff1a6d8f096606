package tuple

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relstore/pkg/dberror"
	"relstore/pkg/keys"
	"relstore/pkg/types"
)

func movie(title string, year int64) *Tuple {
	return New(types.NewStringField(title), types.NewIntField(year))
}

func TestTuple_GetField(t *testing.T) {
	tup := movie("Star_Wars", 1977)
	assert.Equal(t, 2, tup.Len())

	f, err := tup.GetField(1)
	require.NoError(t, err)
	assert.True(t, f.Equals(types.NewIntField(1977)))

	_, err = tup.GetField(2)
	assert.Error(t, err)
	_, err = tup.GetField(-1)
	assert.Error(t, err)
}

func TestTuple_NewCopiesInput(t *testing.T) {
	fields := []types.Field{types.NewIntField(1)}
	tup := New(fields...)
	fields[0] = types.NewIntField(2)

	f, _ := tup.GetField(0)
	assert.True(t, f.Equals(types.NewIntField(1)))

	out := tup.Fields()
	out[0] = types.NewIntField(3)
	f, _ = tup.GetField(0)
	assert.True(t, f.Equals(types.NewIntField(1)))
}

func TestTuple_Project(t *testing.T) {
	tup := New(types.NewStringField("a"), types.NewIntField(1), types.NewBoolField(true))

	p, err := tup.Project([]int{2, 0})
	require.NoError(t, err)
	assert.True(t, p.Equals(New(types.NewBoolField(true), types.NewStringField("a"))))

	_, err = tup.Project([]int{3})
	assert.Error(t, err)
}

func TestTuple_Key(t *testing.T) {
	tup := movie("Star_Wars", 1977)
	k, err := tup.Key([]int{0, 1})
	require.NoError(t, err)

	want, err := keys.FromValues("Star_Wars", 1977)
	require.NoError(t, err)
	assert.True(t, k.Equals(want))
}

func TestTuple_CombineAndString(t *testing.T) {
	c := Combine(movie("A", 1), New(types.NewFloat64Field(2.5)))
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "A\t1\t2.5", c.String())
}

func TestTuple_EqualsAndHash(t *testing.T) {
	a := movie("A", 1)
	b := movie("A", 1)
	c := movie("A", 2)

	assert.True(t, a.Equals(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(New(types.NewStringField("A"))))
}

func TestNewSchema(t *testing.T) {
	s, err := NewSchema(
		[]string{"title", "year", "length"},
		[]types.Type{types.StringType, types.IntType, types.IntType},
		[]string{"title", "year"},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Arity())
	assert.Equal(t, []string{"title", "year", "length"}, s.Attributes())
	assert.Equal(t, []string{"title", "year"}, s.Key())
	assert.Equal(t, []int{0, 1}, s.KeyColumns())
	assert.True(t, s.HasAttribute("length"))
	assert.False(t, s.HasAttribute("studio"))
	assert.Equal(t, types.IntType, s.TypeAt(2))

	cols, err := s.Columns([]string{"length", "title"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, cols)

	_, err = s.ColumnIndex("studio")
	assert.True(t, errors.Is(err, dberror.ErrSchema))
}

func TestNewSchema_Invalid(t *testing.T) {
	tests := []struct {
		desc    string
		attrs   []string
		domains []types.Type
		key     []string
	}{
		{desc: "no attributes", attrs: nil, domains: nil, key: []string{"a"}},
		{desc: "length mismatch", attrs: []string{"a", "b"}, domains: []types.Type{types.IntType}, key: []string{"a"}},
		{desc: "duplicate name", attrs: []string{"a", "a"}, domains: []types.Type{types.IntType, types.IntType}, key: []string{"a"}},
		{desc: "empty name", attrs: []string{""}, domains: []types.Type{types.IntType}, key: []string{""}},
		{desc: "unknown domain", attrs: []string{"a"}, domains: []types.Type{types.Type(42)}, key: []string{"a"}},
		{desc: "empty key", attrs: []string{"a"}, domains: []types.Type{types.IntType}, key: nil},
		{desc: "key not an attribute", attrs: []string{"a"}, domains: []types.Type{types.IntType}, key: []string{"b"}},
		{desc: "duplicate key", attrs: []string{"a"}, domains: []types.Type{types.IntType}, key: []string{"a", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := NewSchema(tt.attrs, tt.domains, tt.key)
			require.Error(t, err)
			assert.True(t, errors.Is(err, dberror.ErrSchema))
		})
	}
}

func TestSchema_Compatible(t *testing.T) {
	a, _ := NewSchema([]string{"x", "y"}, []types.Type{types.StringType, types.IntType}, []string{"x"})
	b, _ := NewSchema([]string{"p", "q"}, []types.Type{types.StringType, types.IntType}, []string{"q"})
	c, _ := NewSchema([]string{"x", "y"}, []types.Type{types.StringType, types.FloatType}, []string{"x"})
	d, _ := NewSchema([]string{"x"}, []types.Type{types.StringType}, []string{"x"})

	assert.True(t, a.Compatible(b))
	assert.False(t, a.Compatible(c))
	assert.False(t, a.Compatible(d))
}

func TestTupleSet(t *testing.T) {
	ts := NewTupleSet()
	assert.True(t, ts.Add(movie("A", 1)))
	assert.False(t, ts.Add(movie("A", 1)))
	assert.True(t, ts.Add(movie("A", 2)))

	assert.Equal(t, 2, ts.Len())
	assert.True(t, ts.Contains(movie("A", 2)))
	assert.False(t, ts.Contains(movie("B", 1)))
}
