package jsontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"null", Null{}, "null"},
		{"string", String("hello"), `"hello"`},
		{"number", Uint(42), "42"},
		{"bool", Bool(false), "false"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"nested", Object{"z": Object{"b": Uint(1), "a": Uint(2)}, "a": Array{Null{}}}, `{"a":[null],"z":{"a":2,"b":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonicalEscaping(t *testing.T) {
	got, err := MarshalCanonical(String("a\"b\\c\n<&>\x01"))
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\n<&>\u0001"`, string(got))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	got, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonicalRejectsNil(t *testing.T) {
	_, err := MarshalCanonical(Object{"a": nil})
	assert.Error(t, err)
}

func TestParseCanonicalRoundTrip(t *testing.T) {
	input := `{"b":[1,2,{"y":null,"x":"ł"}],"a":true}`
	v, err := Parse([]byte(input))
	require.NoError(t, err)

	got, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":true,"b":[1,2,{"x":"ł","y":null}]}`, string(got))
}

func TestHashDomainSeparated(t *testing.T) {
	v := Object{"a": Uint(1)}

	h1, err := Hash(DomainIndex, v)
	require.NoError(t, err)
	h2, err := Hash(DomainRoutines, v)
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, h2)

	canonical, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, h1, HashBytes(DomainIndex, canonical))
}
