// Package jsontree is a small JSON document tree used by the persistence codec.
//
// Values are a sealed set of types so that every consumer switches over a
// closed list. Numbers keep their decimal literal text; fractional and
// exponent forms are rejected at parse time because every number stored in
// a schedule document is an unsigned integer.
package jsontree

import (
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface. Only Null, Bool, String, Number, Array and
// Object implement it.
type Value interface {
	jsonValue()
}

// Null is the JSON null literal.
type Null struct{}

func (Null) jsonValue() {}

// Bool is a JSON boolean.
type Bool bool

func (Bool) jsonValue() {}

// String is a JSON string.
type String string

func (String) jsonValue() {}

// Number is a JSON integer literal.
type Number string

func (Number) jsonValue() {}

// Uint returns a Number for an unsigned integer.
func Uint(n uint64) Number {
	return Number(strconv.FormatUint(n, 10))
}

// Int returns a Number for a signed integer.
func Int(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

// Uint64 parses the literal as an unsigned 64-bit integer.
func (n Number) Uint64() (uint64, error) {
	v, err := strconv.ParseUint(string(n), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("number %s is not an unsigned integer", string(n))
	}
	return v, nil
}

// Int64 parses the literal as a signed 64-bit integer.
func (n Number) Int64() (int64, error) {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("number %s is not an integer", string(n))
	}
	return v, nil
}

// Array is an ordered list of values.
type Array []Value

func (Array) jsonValue() {}

// Object maps string keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) jsonValue() {}

// Pair is a key-value pair for Object construction.
type Pair struct {
	Key   string
	Value Value
}

// P is shorthand for Pair.
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewObject builds an Object from pairs. Later pairs win on duplicate keys.
func NewObject(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// SortedKeys returns keys ordered by UTF-16 code units, matching RFC 8785.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
// Go string comparison is by UTF-8 bytes, which orders supplementary
// plane characters differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Kind names the JSON type of v, for error messages.
func Kind(v Value) string {
	switch v.(type) {
	case nil:
		return "missing"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Number:
		return "number"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		panic(fmt.Sprintf("jsontree: unknown value type %T", v))
	}
}
