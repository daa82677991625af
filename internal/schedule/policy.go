package schedule

import (
	"github.com/google/uuid"

	"github.com/roach88/routines/internal/model"
)

// Deletion classifies what removing a routine from a user's view means.
type Deletion int

const (
	// DeleteNotFound means the routine is not in the view.
	DeleteNotFound Deletion = iota
	// DeleteAllowed is a plain personal routine.
	DeleteAllowed
	// DeletePublic is a public routine or its ghost; deleting it needs an
	// admin and removes it for every user.
	DeletePublic
	// DeleteDerived is an occurrence whose source still exists; it would be
	// regenerated unless the source changes.
	DeleteDerived
	// DeleteOrphan is an occurrence whose source is gone.
	DeleteOrphan
)

func (d Deletion) String() string {
	switch d {
	case DeleteNotFound:
		return "not_found"
	case DeleteAllowed:
		return "allowed"
	case DeletePublic:
		return "public"
	case DeleteDerived:
		return "derived"
	case DeleteOrphan:
		return "orphan"
	default:
		return "unknown"
	}
}

// DeletePolicy is advisory: RemovePersonal and RemovePublic do not consult
// it.
func (s *Store) DeletePolicy(owner, id uuid.UUID) Deletion {
	r, ok := s.LookupRoutine(owner, id)
	if !ok {
		return DeleteNotFound
	}
	if s.IsPublic(id) {
		return DeletePublic
	}

	switch tpl := r.Template.(type) {
	case nil, model.Repeating:
		return DeleteAllowed
	case model.Derived:
		if _, ok := s.LookupRoutine(owner, tpl.Source); ok {
			return DeleteDerived
		}
		return DeleteOrphan
	default:
		panic("schedule: unknown template")
	}
}
