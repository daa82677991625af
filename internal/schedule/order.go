package schedule

import (
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/roach88/routines/internal/model"
)

// lowerBound returns the index of the first routine starting at or after t.
func lowerBound(list []model.Routine, t uint64) int {
	return sort.Search(len(list), func(i int) bool {
		return list[i].Start >= t
	})
}

// insertOrdered inserts r before any routine with an equal or later start.
func insertOrdered(list []model.Routine, r model.Routine) []model.Routine {
	return slices.Insert(list, lowerBound(list, r.Start), r)
}

func indexOf(list []model.Routine, id uuid.UUID) int {
	return slices.IndexFunc(list, func(r model.Routine) bool {
		return r.ID == id
	})
}

// purgeGhosts drops every ghost from list, keeping order.
func purgeGhosts(list []model.Routine) ([]model.Routine, int) {
	before := len(list)
	list = slices.DeleteFunc(list, func(r model.Routine) bool {
		return r.IsGhost
	})
	return list, before - len(list)
}

// purgeOwnerGhosts invalidates the ghost cache of one owner.
func (s *Store) purgeOwnerGhosts(owner uuid.UUID) {
	list, n := purgeGhosts(s.personal[owner])
	s.personal[owner] = list
	if n > 0 {
		s.logger.Debug("ghosts purged", "user", owner, "count", n)
	}
}

// purgeAllGhosts invalidates the ghost cache of every owner.
func (s *Store) purgeAllGhosts() {
	for owner := range s.personal {
		s.purgeOwnerGhosts(owner)
	}
}
