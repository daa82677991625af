package schedule

import (
	"strings"

	"github.com/roach88/routines/internal/model"
)

// Filter narrows a list of routines. Zero-valued fields match everything.
//
// TimeOfDayFrom and TimeOfDayTo are seconds since local midnight, with the
// local day shifted from UTC by TZOffset seconds. When From is after To the
// interval wraps past midnight. A routine matches when its start time of
// day falls in the interval.
//
// Titles and Descriptions are case-insensitive substrings; a routine must
// contain at least one of each non-empty list.
type Filter struct {
	TimeOfDayFrom *uint64
	TimeOfDayTo   *uint64
	TZOffset      int64
	Ended         *bool
	Titles        []string
	Descriptions  []string
}

// Apply returns the routines matching f, preserving order.
func (f Filter) Apply(routines []model.Routine) []model.Routine {
	out := make([]model.Routine, 0, len(routines))
	for _, r := range routines {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether r passes every condition of f.
func (f Filter) Match(r model.Routine) bool {
	if f.Ended != nil && r.IsEnded != *f.Ended {
		return false
	}
	if !f.matchTimeOfDay(r.Start) {
		return false
	}
	if !containsAny(r.Name, f.Titles) {
		return false
	}
	return containsAny(r.Description, f.Descriptions)
}

func (f Filter) matchTimeOfDay(start uint64) bool {
	if f.TimeOfDayFrom == nil && f.TimeOfDayTo == nil {
		return true
	}

	day := int64(model.SecondsPerDay)
	tod := uint64(((int64(start%model.SecondsPerDay)+f.TZOffset)%day + day) % day)

	from, to := uint64(0), model.SecondsPerDay
	if f.TimeOfDayFrom != nil {
		from = *f.TimeOfDayFrom
	}
	if f.TimeOfDayTo != nil {
		to = *f.TimeOfDayTo
	}

	if from <= to {
		return tod >= from && tod < to
	}
	return tod >= from || tod < to
}

func containsAny(s string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
