package jsontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = String("x")
	var _ Value = Number("1")
	var _ Value = Array{String("a"), Number("1")}
	var _ Value = Object{"k": String("v")}
}

func TestSortedKeysRFC8785Order(t *testing.T) {
	obj := Object{
		"a":  Number("1"),
		"A":  Number("2"),
		"aa": Number("3"),
		"aA": Number("4"),
		"Aa": Number("5"),
		"AA": Number("6"),
	}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"aa", "a", 1},
		{"", "a", -1},
		{"", "𐀀", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareKeysRFC8785(tt.a, tt.b))
		})
	}
}

func TestNumberAccessors(t *testing.T) {
	n := Uint(18446744073709551615)
	u, err := n.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), u)

	_, err = n.Int64()
	assert.Error(t, err)

	_, err = Int(-3).Uint64()
	assert.Error(t, err)

	i, err := Int(-3).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(-3), i)
}

func TestNewObject(t *testing.T) {
	obj := NewObject(P("a", Bool(true)), P("b", Null{}), P("a", Bool(false)))
	assert.Equal(t, Object{"a": Bool(false), "b": Null{}}, obj)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "missing", Kind(nil))
	assert.Equal(t, "null", Kind(Null{}))
	assert.Equal(t, "number", Kind(Number("4")))
	assert.Equal(t, "object", Kind(Object{}))
}
