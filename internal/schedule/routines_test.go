package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routines/internal/model"
)

func TestUpsertPersonalKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	for _, start := range []uint64{day0 + 5*hour, day0 + hour, day0 + 9*hour, day0 + 3*hour} {
		require.True(t, s.UpsertPersonal(u.ID, oneOff(uuid.New(), start, "x")))
	}

	list, ok := s.Routines(u.ID)
	require.True(t, ok)
	assert.Equal(t, []uint64{day0 + hour, day0 + 3*hour, day0 + 5*hour, day0 + 9*hour}, starts(list))
}

func TestUpsertPersonalEqualStartGoesFirst(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	first, second := oneOff(uuid.New(), day0, "first"), oneOff(uuid.New(), day0, "second")
	require.True(t, s.UpsertPersonal(u.ID, first))
	require.True(t, s.UpsertPersonal(u.ID, second))

	list, _ := s.Routines(u.ID)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name)
	assert.Equal(t, "first", list[1].Name)
}

func TestUpsertPersonalReplaces(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	r := oneOff(uuid.New(), day0+hour, "gym")
	require.True(t, s.UpsertPersonal(u.ID, r))

	r.Start = day0 + 2*hour
	r.Name = "pool"
	r.IsGhost = true
	require.True(t, s.UpsertPersonal(u.ID, r))

	list, _ := s.Routines(u.ID)
	require.Len(t, list, 1)
	assert.Equal(t, "pool", list[0].Name)
	assert.False(t, list[0].IsGhost)
	assert.Equal(t, day0+2*hour, list[0].Start)
}

func TestUpsertPersonalUnknownOwner(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.UpsertPersonal(uuid.New(), oneOff(uuid.New(), day0, "x")))
	assert.False(t, s.RemovePersonal(uuid.New(), uuid.New()))
}

func TestLookupRoutine(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	personal := oneOff(uuid.New(), day0, "mine")
	public := oneOff(uuid.New(), day0, "ours")
	require.True(t, s.UpsertPersonal(u.ID, personal))
	s.UpsertPublic(public)

	got, ok := s.LookupRoutine(u.ID, personal.ID)
	require.True(t, ok)
	assert.Equal(t, "mine", got.Name)

	got, ok = s.LookupRoutine(model.PublicOwner, public.ID)
	require.True(t, ok)
	assert.Equal(t, "ours", got.Name)

	_, ok = s.LookupRoutine(model.PublicOwner, personal.ID)
	assert.False(t, ok)
	_, ok = s.LookupRoutine(uuid.New(), personal.ID)
	assert.False(t, ok)
}

func TestLookupRoutineReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)
	r := weekly(uuid.New(), day0, true, false, false, false, false, false, false)
	require.True(t, s.UpsertPersonal(u.ID, r))

	got, _ := s.LookupRoutine(u.ID, r.ID)
	got.Template.(model.Repeating).DaysFlags[3] = true

	again, _ := s.LookupRoutine(u.ID, r.ID)
	assert.False(t, again.Template.(model.Repeating).DaysFlags[3])
}

func TestRemovePersonal(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)
	r := oneOff(uuid.New(), day0, "x")
	require.True(t, s.UpsertPersonal(u.ID, r))

	require.True(t, s.RemovePersonal(u.ID, r.ID))
	assert.False(t, s.RemovePersonal(u.ID, r.ID))

	list, _ := s.Routines(u.ID)
	assert.Empty(t, list)
}

func TestUpsertPublicNormalizes(t *testing.T) {
	s := newTestStore(t)

	r := oneOff(uuid.New(), day0, "standup")
	r.IsGhost = true
	r.IsEnded = true
	r.Template = model.Derived{Source: uuid.New()}
	s.UpsertPublic(r)

	got, ok := s.LookupRoutine(model.PublicOwner, r.ID)
	require.True(t, ok)
	assert.False(t, got.IsGhost)
	assert.False(t, got.IsEnded)
	assert.Nil(t, got.Template)
}

func TestUpsertPublicReplacesAndPurgesGhosts(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateUser(t, s, "alice", false)
	bob := mustCreateUser(t, s, "bob", false)

	pub := oneOff(uuid.New(), day0+hour, "standup")
	s.UpsertPublic(pub)

	for _, u := range []model.User{alice, bob} {
		list, ok := s.Range(u.ID, day0, day0+day)
		require.True(t, ok)
		require.Len(t, list, 1)
		assert.True(t, list[0].IsGhost)
	}

	pub.Start = day0 + 2*hour
	s.UpsertPublic(pub)
	assert.Len(t, s.PublicRoutines(), 1)

	for _, u := range []model.User{alice, bob} {
		_, ok := s.LookupRoutine(u.ID, pub.ID)
		assert.False(t, ok, "ghost should be purged for %s", u.Name)

		list, _ := s.Range(u.ID, day0, day0+day)
		require.Len(t, list, 1)
		assert.Equal(t, day0+2*hour, list[0].Start)
	}
}

func TestRemovePublicPurgesGhosts(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	pub := oneOff(uuid.New(), day0+hour, "standup")
	s.UpsertPublic(pub)
	_, _ = s.Range(u.ID, day0, day0+day)

	require.True(t, s.RemovePublic(pub.ID))
	assert.False(t, s.RemovePublic(pub.ID))

	_, ok := s.LookupRoutine(u.ID, pub.ID)
	assert.False(t, ok)
	list, _ := s.Range(u.ID, day0, day0+day)
	assert.Empty(t, list)
}

func TestSetEndedPromotesGhost(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	pub := oneOff(uuid.New(), day0+hour, "standup")
	s.UpsertPublic(pub)
	_, _ = s.Range(u.ID, day0, day0+day)

	require.True(t, s.SetEnded(u.ID, pub.ID, true))

	got, ok := s.LookupRoutine(u.ID, pub.ID)
	require.True(t, ok)
	assert.True(t, got.IsEnded)
	assert.False(t, got.IsGhost)

	public, _ := s.LookupRoutine(model.PublicOwner, pub.ID)
	assert.False(t, public.IsEnded)

	assert.False(t, s.SetEnded(u.ID, uuid.New(), true))
	assert.False(t, s.SetEnded(model.PublicOwner, pub.ID, true))
}

func TestSaveFromUserViewEditsPublicForAdmins(t *testing.T) {
	s := newTestStore(t)
	admin := mustCreateUser(t, s, "admin", true)
	user := mustCreateUser(t, s, "user", false)

	pub := oneOff(uuid.New(), day0+hour, "standup")
	s.UpsertPublic(pub)

	edited := pub
	edited.Name = "user edit"
	require.True(t, s.SaveFromUserView(user.ID, edited))
	got, _ := s.LookupRoutine(model.PublicOwner, pub.ID)
	assert.Equal(t, "standup", got.Name)

	edited.Name = "admin edit"
	require.True(t, s.SaveFromUserView(admin.ID, edited))
	got, _ = s.LookupRoutine(model.PublicOwner, pub.ID)
	assert.Equal(t, "admin edit", got.Name)

	assert.False(t, s.SaveFromUserView(uuid.New(), edited))
}

func TestDeletePolicy(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	origin := weekly(uuid.New(), day0, true, true, false, false, false, false, false)
	plain := oneOff(uuid.New(), day0+3*day, "plain")
	pub := oneOff(uuid.New(), day0+4*day, "pub")
	require.True(t, s.UpsertPersonal(u.ID, origin))
	require.True(t, s.UpsertPersonal(u.ID, plain))
	s.UpsertPublic(pub)

	list, _ := s.Range(u.ID, day0, day0+7*day)
	require.Len(t, list, 4)
	derived := list[1]
	require.Equal(t, model.Derived{Source: origin.ID}, derived.Template)

	assert.Equal(t, DeleteAllowed, s.DeletePolicy(u.ID, origin.ID))
	assert.Equal(t, DeleteAllowed, s.DeletePolicy(u.ID, plain.ID))
	assert.Equal(t, DeletePublic, s.DeletePolicy(u.ID, pub.ID))
	assert.Equal(t, DeleteDerived, s.DeletePolicy(u.ID, derived.ID))
	assert.Equal(t, DeleteNotFound, s.DeletePolicy(u.ID, uuid.New()))

	derived.Name = "kept"
	require.True(t, s.UpsertPersonal(u.ID, derived))
	require.True(t, s.RemovePersonal(u.ID, origin.ID))
	assert.Equal(t, DeleteOrphan, s.DeletePolicy(u.ID, derived.ID))
	assert.Equal(t, "orphan", DeleteOrphan.String())
}
