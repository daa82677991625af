package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/routines/internal/model"
)

// parseTime accepts Unix seconds, an RFC 3339 timestamp or a UTC date
// (2006-01-02).
func parseTime(s string) (uint64, error) {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Unix() < 0 {
			return 0, fmt.Errorf("time %q is before the Unix epoch", s)
		}
		return uint64(t.Unix()), nil
	}
	return 0, fmt.Errorf("invalid time %q: want Unix seconds, RFC 3339 or YYYY-MM-DD", s)
}

// parseClock converts HH:MM to seconds since midnight.
func parseClock(s string) (uint64, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	return uint64(t.Hour()*3600 + t.Minute()*60), nil
}

func formatTime(secs uint64) string {
	return time.Unix(int64(secs), 0).UTC().Format(time.RFC3339)
}

func formatDuration(secs uint64) string {
	return (time.Duration(secs) * time.Second).String()
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, WrapExitError(ExitCommandError, ErrCodeInput, fmt.Sprintf("invalid routine id %q", s), err)
	}
	return id, nil
}

// UserView is the output form of a user.
type UserView struct {
	ID                        string `json:"id"`
	Name                      string `json:"name"`
	Nickname                  string `json:"nickname"`
	IsAdmin                   bool   `json:"is_admin"`
	LastRoutinesUpdateTS      uint64 `json:"last_routines_update_ts"`
	Theme                     string `json:"theme"`
	DayViewPreferTimeline     bool   `json:"day_view_prefer_timeline"`
	VerifyIdentityBeforeLogin bool   `json:"verify_identity_before_login"`
	Routines                  *int   `json:"routines,omitempty"`
}

func newUserView(u model.User) UserView {
	return UserView{
		ID:                        u.ID.String(),
		Name:                      u.Name,
		Nickname:                  u.Nickname,
		IsAdmin:                   u.IsAdmin,
		LastRoutinesUpdateTS:      u.LastRoutinesUpdateTS,
		Theme:                     u.Preferences.Theme.String(),
		DayViewPreferTimeline:     u.Preferences.DayViewPreferTimeline,
		VerifyIdentityBeforeLogin: u.Preferences.VerifyIdentityBeforeLogin,
	}
}

func (v UserView) WriteText(w io.Writer) {
	admin := ""
	if v.IsAdmin {
		admin = " (admin)"
	}
	fmt.Fprintf(w, "%s  %s  %q%s\n", v.ID, v.Name, v.Nickname, admin)
	if v.Routines != nil {
		fmt.Fprintf(w, "  theme=%s timeline=%t verify_identity=%t routines=%d\n",
			v.Theme, v.DayViewPreferTimeline, v.VerifyIdentityBeforeLogin, *v.Routines)
	}
}

// UserList is the output form of user list.
type UserList []UserView

func (l UserList) WriteText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No users.")
		return
	}
	for _, u := range l {
		u.WriteText(w)
	}
}

// RoutineView is the output form of a routine.
type RoutineView struct {
	ID          string `json:"id"`
	Start       string `json:"start"`
	StartSecs   uint64 `json:"start_secs_since_epoch"`
	Duration    string `json:"duration"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       uint32 `json:"color"`
	EndOnExpiry bool   `json:"end_on_expiry"`
	Ghost       bool   `json:"ghost"`
	Ended       bool   `json:"ended"`
	Template    string `json:"template"`
	Cycle       uint32 `json:"repeat_days_cycle,omitempty"`
	Cycles      uint32 `json:"repeat_cycles,omitempty"`
	Days        []int  `json:"repeat_days,omitempty"`
	Source      string `json:"source_routine,omitempty"`
}

func newRoutineView(r model.Routine) RoutineView {
	v := RoutineView{
		ID:          r.ID.String(),
		Start:       formatTime(r.Start),
		StartSecs:   r.Start,
		Duration:    formatDuration(r.Duration),
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		EndOnExpiry: r.EndTrigger&model.EndExpiry != 0,
		Ghost:       r.IsGhost,
		Ended:       r.IsEnded,
		Template:    model.TemplateKind(r.Template),
	}
	switch tpl := r.Template.(type) {
	case model.Repeating:
		v.Cycle, v.Cycles = tpl.DaysCycle, tpl.Cycles
		for d, on := range tpl.DaysFlags {
			if on {
				v.Days = append(v.Days, d)
			}
		}
	case model.Derived:
		v.Source = tpl.Source.String()
	}
	return v
}

func (v RoutineView) WriteText(w io.Writer) {
	var marks []string
	if v.Ghost {
		marks = append(marks, "ghost")
	}
	if v.Ended {
		marks = append(marks, "ended")
	}
	switch v.Template {
	case "repeating":
		cycles := "forever"
		if v.Cycles != 0 {
			cycles = fmt.Sprintf("x%d", v.Cycles)
		}
		marks = append(marks, fmt.Sprintf("every %dd on %v %s", v.Cycle, v.Days, cycles))
	case "derived":
		marks = append(marks, "from "+v.Source)
	}

	line := fmt.Sprintf("%s  %-8s  %s  %s", v.Start, v.Duration, v.ID, v.Name)
	if len(marks) > 0 {
		line += "  [" + strings.Join(marks, ", ") + "]"
	}
	fmt.Fprintln(w, line)
}

// RoutineList is the output form of a list of routines.
type RoutineList []RoutineView

func newRoutineList(routines []model.Routine) RoutineList {
	out := make(RoutineList, len(routines))
	for i, r := range routines {
		out[i] = newRoutineView(r)
	}
	return out
}

func (l RoutineList) WriteText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No routines.")
		return
	}
	for _, r := range l {
		r.WriteText(w)
	}
}
