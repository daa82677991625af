package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	gen := NewSequentialIDs()

	assert.Equal(t, "00000000-0000-4000-8000-000000000001", gen.NewID().String())
	assert.Equal(t, "00000000-0000-4000-8000-000000000002", gen.NewID().String())
	assert.Equal(t, SequentialID(3), gen.NewID())

	gen.Reset()
	assert.Equal(t, SequentialID(1), gen.NewID())
}

func TestSequentialIDLargeValues(t *testing.T) {
	assert.Equal(t, "00000000-0000-4000-8000-0000000000ff", SequentialID(255).String())
	assert.Equal(t, "00000000-0000-4000-8000-010000000000", SequentialID(1<<40).String())
}

func TestFixedIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	gen := NewFixedIDs(a, b)

	assert.Equal(t, a, gen.NewID())
	assert.Equal(t, b, gen.NewID())
	assert.Panics(t, func() { gen.NewID() })
}
