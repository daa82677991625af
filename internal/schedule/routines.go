package schedule

import (
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/routines/internal/model"
)

// LookupRoutine finds a routine by id. model.PublicOwner searches the
// public routines; any other owner searches that user's personal list,
// including cached ghosts.
func (s *Store) LookupRoutine(owner, id uuid.UUID) (model.Routine, bool) {
	var list []model.Routine
	if owner == model.PublicOwner {
		list = s.public
	} else {
		var ok bool
		if list, ok = s.personal[owner]; !ok {
			return model.Routine{}, false
		}
	}

	i := indexOf(list, id)
	if i < 0 {
		return model.Routine{}, false
	}
	return list[i].Clone(), true
}

// Routines returns the persisted (non-ghost) personal routines of owner.
func (s *Store) Routines(owner uuid.UUID) ([]model.Routine, bool) {
	list, ok := s.personal[owner]
	if !ok {
		return nil, false
	}
	out := make([]model.Routine, 0, len(list))
	for _, r := range list {
		if !r.IsGhost {
			out = append(out, r.Clone())
		}
	}
	return out, true
}

// PublicRoutines returns every public routine in start order.
func (s *Store) PublicRoutines() []model.Routine {
	out := make([]model.Routine, len(s.public))
	for i, r := range s.public {
		out[i] = r.Clone()
	}
	return out
}

// IsPublic reports whether id names a public routine.
func (s *Store) IsPublic(id uuid.UUID) bool {
	return indexOf(s.public, id) >= 0
}

// UpsertPersonal inserts or replaces a routine in owner's personal list.
// Replacing an existing entry, ghost or not, drops all of the owner's
// ghosts; the stored routine is always real. It fails only when owner has
// no personal list.
func (s *Store) UpsertPersonal(owner uuid.UUID, r model.Routine) bool {
	list, ok := s.personal[owner]
	if !ok {
		return false
	}

	if i := indexOf(list, r.ID); i >= 0 {
		s.personal[owner] = slices.Delete(list, i, i+1)
		s.purgeOwnerGhosts(owner)
	}

	r = r.Clone()
	r.IsGhost = false
	s.personal[owner] = insertOrdered(s.personal[owner], r)
	s.markDirty(false, true)
	return true
}

// RemovePersonal deletes a routine from owner's personal list and drops
// the owner's ghosts.
func (s *Store) RemovePersonal(owner, id uuid.UUID) bool {
	list, ok := s.personal[owner]
	if !ok {
		return false
	}
	i := indexOf(list, id)
	if i < 0 {
		return false
	}

	s.personal[owner] = slices.Delete(list, i, i+1)
	s.purgeOwnerGhosts(owner)
	s.markDirty(false, true)
	return true
}

// UpsertPublic inserts or replaces a public routine. Public routines are
// never ghosts, never ended and never derived; a Derived template is
// dropped. Replacing an existing routine drops every user's ghosts.
func (s *Store) UpsertPublic(r model.Routine) {
	if i := indexOf(s.public, r.ID); i >= 0 {
		s.public = slices.Delete(s.public, i, i+1)
		s.purgeAllGhosts()
	}

	r = r.Clone()
	r.IsGhost = false
	r.IsEnded = false
	if _, ok := r.Template.(model.Derived); ok {
		r.Template = nil
	}
	s.public = insertOrdered(s.public, r)
	s.markDirty(false, true)
}

// RemovePublic deletes a public routine and drops every user's ghosts.
func (s *Store) RemovePublic(id uuid.UUID) bool {
	i := indexOf(s.public, id)
	if i < 0 {
		return false
	}

	s.public = slices.Delete(s.public, i, i+1)
	s.purgeAllGhosts()
	s.markDirty(false, true)
	return true
}

// SetEnded marks a routine in owner's view as ended or not. A ghost is
// promoted to a real record in the process.
func (s *Store) SetEnded(owner, id uuid.UUID, ended bool) bool {
	if owner == model.PublicOwner {
		return false
	}
	r, ok := s.LookupRoutine(owner, id)
	if !ok {
		return false
	}
	r.IsEnded = ended
	return s.UpsertPersonal(owner, r)
}

// SaveFromUserView stores an edit made in owner's view. When owner is an
// admin and the routine is public, the public copy is updated as well.
func (s *Store) SaveFromUserView(owner uuid.UUID, r model.Routine) bool {
	if !s.UpsertPersonal(owner, r) {
		return false
	}
	if u, ok := s.LookupUser(owner); ok && u.IsAdmin && s.IsPublic(r.ID) {
		s.UpsertPublic(r)
	}
	return true
}
