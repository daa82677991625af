package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeRoundTrip(t *testing.T) {
	for _, th := range []Theme{ThemeFollowSystem, ThemeLight, ThemeDark} {
		parsed, err := ParseTheme(th.String())
		require.NoError(t, err)
		assert.Equal(t, th, parsed)
	}

	_, err := ParseTheme("sepia")
	assert.Error(t, err)

	assert.Panics(t, func() { _ = Theme(9).String() })
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	assert.True(t, p.DayViewPreferTimeline)
	assert.Equal(t, ThemeFollowSystem, p.Theme)
	assert.False(t, p.VerifyIdentityBeforeLogin)
}

func TestCloneCopiesFlags(t *testing.T) {
	r := Routine{Template: Repeating{DaysCycle: 2, DaysFlags: []bool{true, false}}}
	c := r.Clone()

	c.Template.(Repeating).DaysFlags[1] = true
	assert.False(t, r.Template.(Repeating).DaysFlags[1])
}

func TestTemplateKind(t *testing.T) {
	assert.Equal(t, "none", TemplateKind(nil))
	assert.Equal(t, "repeating", TemplateKind(Repeating{DaysCycle: 1, DaysFlags: []bool{true}}))
	assert.Equal(t, "derived", TemplateKind(Derived{}))

	src := uuid.New()
	got, ok := SourceOf(Derived{Source: src})
	assert.True(t, ok)
	assert.Equal(t, src, got)

	_, ok = SourceOf(nil)
	assert.False(t, ok)
}

func TestRoutineEnd(t *testing.T) {
	r := Routine{Start: 100, Duration: 50}
	assert.Equal(t, uint64(150), r.End())
}
