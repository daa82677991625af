package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routines/internal/model"
)

var thirdDayOfWeek = []bool{false, false, true, false, false, false, false}

func TestRangePublicRepeatingWeek(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	pub := weekly(uuid.New(), day0+9*hour, thirdDayOfWeek...)
	s.UpsertPublic(pub)

	list, ok := s.Range(u.ID, day0, day0+7*day)
	require.True(t, ok)
	require.Len(t, list, 2)

	assert.Equal(t, pub.ID, list[0].ID)
	assert.True(t, list[0].IsGhost)
	assert.Equal(t, day0+9*hour, list[0].Start)

	assert.True(t, list[1].IsGhost)
	assert.NotEqual(t, pub.ID, list[1].ID)
	assert.Equal(t, day0+2*day+9*hour, list[1].Start)
	assert.Equal(t, model.Derived{Source: pub.ID}, list[1].Template)
	assert.Equal(t, pub.Name, list[1].Name)
}

func TestRangeIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)
	s.UpsertPublic(weekly(uuid.New(), day0+9*hour, thirdDayOfWeek...))

	first, _ := s.Range(u.ID, day0, day0+28*day)
	second, _ := s.Range(u.ID, day0, day0+28*day)
	assert.Equal(t, first, second)
	assert.Equal(t, []uint64{day0 + 9*hour, day0 + 2*day + 9*hour, day0 + 9*day + 9*hour, day0 + 16*day + 9*hour, day0 + 23*day + 9*hour}, starts(first))
}

func TestRangePromotedGhostSurvivesRegeneration(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)
	pub := weekly(uuid.New(), day0+9*hour, thirdDayOfWeek...)
	s.UpsertPublic(pub)

	list, _ := s.Range(u.ID, day0, day0+14*day)
	require.Len(t, list, 3)
	other := list[2]

	edited := list[1]
	edited.Name = "moved to the afternoon"
	edited.Start += 5 * hour
	require.True(t, s.UpsertPersonal(u.ID, edited))

	_, ok := s.LookupRoutine(u.ID, other.ID)
	assert.False(t, ok, "stale ghosts are purged on promotion")

	list, _ = s.Range(u.ID, day0, day0+14*day)
	require.Len(t, list, 3)
	requireSorted(t, list)

	promoted := list[1]
	assert.Equal(t, edited.ID, promoted.ID)
	assert.False(t, promoted.IsGhost)
	assert.Equal(t, "moved to the afternoon", promoted.Name)

	for _, r := range list {
		if r.ID != promoted.ID {
			assert.True(t, r.IsGhost)
		}
	}
	assert.Equal(t, day0+9*day+9*hour, list[2].Start)
	assert.NotEqual(t, other.ID, list[2].ID)
}

func TestRangePersonalRepeatingUnbounded(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	daily := model.Routine{
		ID:       uuid.New(),
		Start:    day0 + 6*hour,
		Duration: hour,
		Template: model.Repeating{DaysCycle: 1, Cycles: 0, DaysFlags: []bool{true}},
	}
	require.True(t, s.UpsertPersonal(u.ID, daily))

	list, ok := s.Range(u.ID, day0, day0+365*day)
	require.True(t, ok)
	assert.Len(t, list, 365)
	requireSorted(t, list)
	assert.Equal(t, daily.ID, list[0].ID)
	assert.Equal(t, day0+364*day+6*hour, list[364].Start)
}

func TestRangeBoundedCycles(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	r := model.Routine{
		ID:       uuid.New(),
		Start:    day0,
		Duration: hour,
		Template: model.Repeating{DaysCycle: 2, Cycles: 3, DaysFlags: []bool{true, true}},
	}
	require.True(t, s.UpsertPersonal(u.ID, r))

	list, _ := s.Range(u.ID, day0, day0+30*day)
	assert.Equal(t, []uint64{day0, day0 + day, day0 + 2*day, day0 + 3*day, day0 + 4*day, day0 + 5*day}, starts(list))
}

func TestRangeStopsAtWindowEnd(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	r := model.Routine{
		ID:       uuid.New(),
		Start:    day0,
		Duration: hour,
		Template: model.Repeating{DaysCycle: 7, Cycles: 0, DaysFlags: []bool{true, true, true, true, true, true, true}},
	}
	require.True(t, s.UpsertPersonal(u.ID, r))

	list, _ := s.Range(u.ID, day0, day0+3*day)
	assert.Len(t, list, 3)

	all, _ := s.Routines(u.ID)
	assert.Len(t, all, 1)
	for id := range s.personal {
		for _, cached := range s.personal[id] {
			assert.Less(t, cached.Start, day0+3*day)
		}
	}
}

func TestRangeWindowFarFromOrigin(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	r := model.Routine{
		ID:       uuid.New(),
		Start:    day0 + hour,
		Duration: hour,
		Template: model.Repeating{DaysCycle: 1, Cycles: 0, DaysFlags: []bool{true}},
	}
	require.True(t, s.UpsertPersonal(u.ID, r))

	list, _ := s.Range(u.ID, day0+1000*day, day0+1001*day)
	require.Len(t, list, 1)
	assert.Equal(t, day0+1000*day+hour, list[0].Start)
	assert.Less(t, len(s.personal[u.ID]), 10)
}

func TestRangeBeforeOrigin(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)
	require.True(t, s.UpsertPersonal(u.ID, weekly(uuid.New(), day0+7*day, thirdDayOfWeek...)))

	list, ok := s.Range(u.ID, day0, day0+7*day)
	require.True(t, ok)
	assert.Empty(t, list)
}

func TestRangeEmptyWindow(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)
	require.True(t, s.UpsertPersonal(u.ID, oneOff(uuid.New(), day0, "x")))

	list, ok := s.Range(u.ID, day0+day, day0)
	require.True(t, ok)
	assert.Empty(t, list)
}

func TestRangeUnknownOwner(t *testing.T) {
	s := newTestStore(t)
	_, ok := s.Range(uuid.New(), 0, day0)
	assert.False(t, ok)
}

func TestRangeSkipsDayWithPromotedOccurrence(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	origin := weekly(uuid.New(), day0+9*hour, thirdDayOfWeek...)
	require.True(t, s.UpsertPersonal(u.ID, origin))

	// A promoted occurrence moved to late evening of the same day.
	moved := oneOff(uuid.New(), day0+2*day+22*hour, "late")
	moved.Template = model.Derived{Source: origin.ID}
	require.True(t, s.UpsertPersonal(u.ID, moved))

	list, _ := s.Range(u.ID, day0, day0+7*day)
	require.Len(t, list, 2)
	assert.Equal(t, moved.ID, list[1].ID)
}

func TestRangeRespectsPersonalCopyOfPublic(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	pub := oneOff(uuid.New(), day0+hour, "standup")
	s.UpsertPublic(pub)

	mine := pub
	mine.Name = "my standup"
	require.True(t, s.UpsertPersonal(u.ID, mine))

	list, _ := s.Range(u.ID, day0, day0+day)
	require.Len(t, list, 1)
	assert.Equal(t, "my standup", list[0].Name)
	assert.False(t, list[0].IsGhost)
}

func TestRangeWithFilter(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "alice", false)

	require.True(t, s.UpsertPersonal(u.ID, oneOff(uuid.New(), day0+8*hour, "Morning run")))
	require.True(t, s.UpsertPersonal(u.ID, oneOff(uuid.New(), day0+20*hour, "Evening read")))

	list, _ := s.Range(u.ID, day0, day0+day)
	from, to := 6*hour, 12*hour
	got := Filter{TimeOfDayFrom: &from, TimeOfDayTo: &to}.Apply(list)
	require.Len(t, got, 1)
	assert.Equal(t, "Morning run", got[0].Name)
}
