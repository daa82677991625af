package schedule

import (
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/routines/internal/model"
)

type newUser struct {
	Name     string `validate:"required,alphanum"`
	Nickname string `validate:"required"`
}

// CreateUser adds a user with default preferences and an empty routine
// list. It fails when name or nickname is empty, name is not ASCII
// alphanumeric, or name is already taken.
func (s *Store) CreateUser(name, nickname string, isAdmin bool) (model.User, bool) {
	if err := s.validate.Struct(newUser{Name: name, Nickname: nickname}); err != nil {
		s.logger.Debug("user rejected", "name", name, "error", err)
		return model.User{}, false
	}
	if slices.ContainsFunc(s.users, func(u model.User) bool { return u.Name == name }) {
		s.logger.Debug("user rejected", "name", name, "error", "name taken")
		return model.User{}, false
	}

	u := model.User{
		ID:                   s.ids.NewID(),
		Name:                 name,
		Nickname:             nickname,
		IsAdmin:              isAdmin,
		LastRoutinesUpdateTS: 0,
		Preferences:          model.DefaultPreferences(),
	}
	s.users = append(s.users, u)
	s.personal[u.ID] = []model.Routine{}
	s.markDirty(true, true)

	s.logger.Info("user created", "id", u.ID, "name", u.Name)
	return u, true
}

// Users returns every user in creation order.
func (s *Store) Users() []model.User {
	return slices.Clone(s.users)
}

// LookupUser finds a user by id.
func (s *Store) LookupUser(id uuid.UUID) (model.User, bool) {
	i := s.userIndex(id)
	if i < 0 {
		return model.User{}, false
	}
	return s.users[i], true
}

// LookupUserByName finds a user by its unique name.
func (s *Store) LookupUserByName(name string) (model.User, bool) {
	i := slices.IndexFunc(s.users, func(u model.User) bool { return u.Name == name })
	if i < 0 {
		return model.User{}, false
	}
	return s.users[i], true
}

// UpdateUser copies nickname, admin flag, last update time and
// preferences from u onto the stored user with the same id. The name is
// never changed.
func (s *Store) UpdateUser(u model.User) bool {
	i := s.userIndex(u.ID)
	if i < 0 {
		return false
	}

	stored := &s.users[i]
	stored.Nickname = u.Nickname
	stored.IsAdmin = u.IsAdmin
	stored.LastRoutinesUpdateTS = u.LastRoutinesUpdateTS
	stored.Preferences = u.Preferences
	s.markDirty(true, false)
	return true
}

// RemoveUser deletes a user together with all of its personal routines.
func (s *Store) RemoveUser(id uuid.UUID) bool {
	i := s.userIndex(id)
	if i < 0 {
		return false
	}

	s.users = slices.Delete(s.users, i, i+1)
	delete(s.personal, id)
	s.markDirty(true, true)

	s.logger.Info("user removed", "id", id)
	return true
}

func (s *Store) userIndex(id uuid.UUID) int {
	return slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == id })
}
