package jsontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse([]byte(`{"version": 1, "users": [], "name": "x", "ok": true, "t": null}`))
	require.NoError(t, err)

	assert.Equal(t, Object{
		"version": Number("1"),
		"users":   Array{},
		"name":    String("x"),
		"ok":      Bool(true),
		"t":       Null{},
	}, v)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"float", `{"a": 1.5}`},
		{"exponent", `[1e3]`},
		{"malformed", `{"a": }`},
		{"trailing", `{} {}`},
		{"unterminated", `[1, 2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseTrailingWhitespace(t *testing.T) {
	v, err := Parse([]byte("{}\n\n"))
	require.NoError(t, err)
	assert.Equal(t, Object{}, v)
}

func TestParseLargeUnsigned(t *testing.T) {
	v, err := Parse([]byte(`[18446744073709551615]`))
	require.NoError(t, err)

	arr := v.(Array)
	u, err := arr[0].(Number).Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), u)
}
