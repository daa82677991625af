package schedule

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routines/internal/model"
	"github.com/roach88/routines/internal/testutil"
)

// day0 is midnight UTC, 2023-11-14.
const (
	day0 uint64 = 19675 * model.SecondsPerDay
	hour uint64 = 3600
	day         = model.SecondsPerDay
)

// newTestStore creates a store with sequential ids and silent logging.
func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDGenerator(testutil.NewSequentialIDs()),
	}, opts...)
	s, err := New(opts...)
	require.NoError(t, err)
	return s
}

// connectTestStore creates a store connected to a fresh directory.
func connectTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := newTestStore(t, opts...)
	require.NoError(t, s.Connect(dir, false))
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readDoc(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func mustCreateUser(t *testing.T, s *Store, name string, admin bool) model.User {
	t.Helper()
	u, ok := s.CreateUser(name, "Nick "+name, admin)
	require.True(t, ok, "create user %s", name)
	return u
}

func weekly(id uuid.UUID, start uint64, flags ...bool) model.Routine {
	return model.Routine{
		ID:       id,
		Start:    start,
		Duration: hour,
		Name:     "weekly",
		Template: model.Repeating{DaysCycle: 7, Cycles: 0, DaysFlags: flags},
	}
}

func oneOff(id uuid.UUID, start uint64, name string) model.Routine {
	return model.Routine{ID: id, Start: start, Duration: hour, Name: name}
}

func starts(routines []model.Routine) []uint64 {
	out := make([]uint64, len(routines))
	for i, r := range routines {
		out[i] = r.Start
	}
	return out
}

func requireSorted(t *testing.T, list []model.Routine) {
	t.Helper()
	for i := 1; i < len(list); i++ {
		require.LessOrEqual(t, list[i-1].Start, list[i].Start, "list not sorted at %d", i)
	}
}
