package model

import (
	"fmt"

	"github.com/google/uuid"
)

// SecondsPerDay is the length of one recurrence day step.
const SecondsPerDay uint64 = 86400

// PublicOwner is the owner id used to address public routines.
var PublicOwner = uuid.Nil

// EndTrigger is a bitmask of conditions that end a routine.
type EndTrigger uint32

const (
	EndManual EndTrigger = 0x0
	EndExpiry EndTrigger = 0x1
)

// Template describes how a routine relates to recurrence.
// The set of implementations is closed: Repeating and Derived.
// A nil Template is a plain one-off routine.
type Template interface {
	template()
}

// Repeating is a recurrence rule. DaysFlags has exactly DaysCycle entries;
// entry d set means an occurrence d days into each cycle. Cycles of zero
// repeats without bound.
type Repeating struct {
	DaysCycle uint32
	Cycles    uint32
	DaysFlags []bool
}

func (Repeating) template() {}

// Derived marks an occurrence generated from the Repeating routine Source.
type Derived struct {
	Source uuid.UUID
}

func (Derived) template() {}

// Routine is a time-boxed event. Ghost routines are generated on read and
// are never persisted.
type Routine struct {
	ID          uuid.UUID
	Start       uint64
	Duration    uint64
	IsGhost     bool
	Name        string
	Description string
	Color       uint32
	EndTrigger  EndTrigger
	IsEnded     bool
	Template    Template
}

// Clone returns a copy that shares no mutable state with r.
func (r Routine) Clone() Routine {
	if rep, ok := r.Template.(Repeating); ok {
		rep.DaysFlags = append([]bool(nil), rep.DaysFlags...)
		r.Template = rep
	}
	return r
}

// End returns the end time of the routine.
func (r Routine) End() uint64 {
	return r.Start + r.Duration
}

// TemplateKind names the template variant for display.
// Panics on a variant outside the closed set.
func TemplateKind(t Template) string {
	switch t.(type) {
	case nil:
		return "none"
	case Repeating:
		return "repeating"
	case Derived:
		return "derived"
	default:
		panic(fmt.Sprintf("model: unknown template %T", t))
	}
}

// SourceOf returns the source id when t is Derived.
func SourceOf(t Template) (uuid.UUID, bool) {
	d, ok := t.(Derived)
	if !ok {
		return uuid.Nil, false
	}
	return d.Source, true
}
