package schedule

import (
	"github.com/google/uuid"

	"github.com/roach88/routines/internal/model"
)

// Range returns owner's routines starting in [start, end), sorted by start,
// with public and recurring routines expanded into ghost occurrences.
// It fails only when owner has no personal list.
//
// Generated ghosts stay cached in the personal list until a mutation
// purges them. Calling Range twice with the same window returns the same
// routines.
func (s *Store) Range(owner uuid.UUID, start, end uint64) ([]model.Routine, bool) {
	list, ok := s.personal[owner]
	if !ok {
		return nil, false
	}

	list = s.ghostPublic(list, end)

	var origins []model.Routine
	for _, r := range list {
		if r.Start >= end {
			break
		}
		if _, ok := r.Template.(model.Repeating); ok {
			origins = append(origins, r.Clone())
		}
	}
	generated := 0
	for _, origin := range origins {
		var n int
		list, n = s.expand(list, origin, start, end)
		generated += n
	}
	s.personal[owner] = list

	if generated > 0 {
		s.logger.Debug("occurrences materialized", "user", owner, "count", generated)
	}

	lo, hi := lowerBound(list, start), lowerBound(list, end)
	if hi <= lo {
		return []model.Routine{}, true
	}
	out := make([]model.Routine, 0, hi-lo)
	for _, r := range list[lo:hi] {
		out = append(out, r.Clone())
	}
	return out, true
}

// ghostPublic adds a ghost copy of every public routine starting before
// end that the list does not already hold under the same id.
func (s *Store) ghostPublic(list []model.Routine, end uint64) []model.Routine {
	for _, pub := range s.public {
		if pub.Start >= end {
			break
		}
		if indexOf(list, pub.ID) >= 0 {
			continue
		}
		g := pub.Clone()
		g.IsGhost = true
		list = insertOrdered(list, g)
	}
	return list
}

// expand generates the occurrences of origin before end. Day 0 of the
// first cycle is origin itself. An occurrence is skipped when its calendar
// day already holds a routine derived from origin, ghost or promoted.
// Whole cycles ending before start are not generated.
func (s *Store) expand(list []model.Routine, origin model.Routine, start, end uint64) ([]model.Routine, int) {
	rep := origin.Template.(model.Repeating)
	if rep.DaysCycle == 0 {
		return list, 0
	}
	cycleSecs := uint64(rep.DaysCycle) * model.SecondsPerDay

	first := uint64(0)
	if start > origin.Start {
		first = (start - origin.Start) / cycleSecs
	}
	if rep.Cycles != 0 && first >= uint64(rep.Cycles) {
		return list, 0
	}

	days := min(int(rep.DaysCycle), len(rep.DaysFlags))
	generated := 0
	for cycle := first; rep.Cycles == 0 || cycle < uint64(rep.Cycles); cycle++ {
		base := origin.Start + cycle*cycleSecs
		if base >= end {
			break
		}

		day := 0
		if cycle == 0 {
			day = 1
		}
		for ; day < days; day++ {
			if !rep.DaysFlags[day] {
				continue
			}
			at := base + uint64(day)*model.SecondsPerDay
			if at >= end {
				break
			}
			if hasDerivedOnDay(list, origin.ID, at) {
				continue
			}

			g := origin.Clone()
			g.ID = s.ids.NewID()
			g.IsGhost = true
			g.Start = at
			g.Template = model.Derived{Source: origin.ID}
			list = insertOrdered(list, g)
			generated++
		}
	}
	return list, generated
}

// hasDerivedOnDay reports whether the calendar day containing at already
// holds a routine derived from source.
func hasDerivedOnDay(list []model.Routine, source uuid.UUID, at uint64) bool {
	dayStart := at / model.SecondsPerDay * model.SecondsPerDay
	dayEnd := dayStart + model.SecondsPerDay

	for i := lowerBound(list, dayStart); i < len(list) && list[i].Start < dayEnd; i++ {
		if src, ok := model.SourceOf(list[i].Template); ok && src == source {
			return true
		}
	}
	return false
}
