// Package model defines the users and routines kept by the schedule store.
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Theme is a user's color scheme preference.
type Theme int

const (
	ThemeFollowSystem Theme = iota
	ThemeLight
	ThemeDark
)

// String returns the persisted spelling of the theme.
// Panics on a value outside the enum.
func (t Theme) String() string {
	switch t {
	case ThemeFollowSystem:
		return "system"
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		panic(fmt.Sprintf("model: unknown theme %d", int(t)))
	}
}

// ParseTheme converts the persisted spelling back to a Theme.
func ParseTheme(s string) (Theme, error) {
	switch s {
	case "system":
		return ThemeFollowSystem, nil
	case "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	default:
		return 0, fmt.Errorf("unknown theme %q", s)
	}
}

// Preferences are per-user display settings.
type Preferences struct {
	DayViewPreferTimeline     bool
	Theme                     Theme
	VerifyIdentityBeforeLogin bool
}

// DefaultPreferences are assigned to newly created users.
func DefaultPreferences() Preferences {
	return Preferences{
		DayViewPreferTimeline:     true,
		Theme:                     ThemeFollowSystem,
		VerifyIdentityBeforeLogin: false,
	}
}

// User is an account. Name is unique, ASCII alphanumeric and never changes
// after creation.
type User struct {
	ID                   uuid.UUID
	Name                 string
	Nickname             string
	IsAdmin              bool
	LastRoutinesUpdateTS uint64
	Preferences          Preferences
}
