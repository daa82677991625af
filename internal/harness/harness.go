package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/routines/internal/model"
	"github.com/roach88/routines/internal/schedule"
	"github.com/roach88/routines/internal/testutil"
)

// Harness runs one scenario against a schedule store.
//
// Users and routines are addressed by scenario labels. Labels are bound to
// ids drawn from a sequential generator shared with the store, so a
// scenario produces the same ids on every run.
type Harness struct {
	dir    string
	epoch  uint64
	ids    *testutil.SequentialIDs
	logger *slog.Logger
	store  *schedule.Store

	users    map[string]uuid.UUID
	routines map[string]uuid.UUID
	labels   map[uuid.UUID]string
	captures map[string][]model.Routine

	result *Result
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the store logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes scenario in dir, which must be an empty directory, and
// returns the trace together with every failed expectation.
//
// The returned error reports a run that could not start at all.
func Run(scenario *Scenario, dir string, opts ...Option) (*Result, error) {
	h := &Harness{
		dir:      dir,
		epoch:    scenario.Epoch,
		ids:      testutil.NewSequentialIDs(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		users:    make(map[string]uuid.UUID),
		routines: make(map[string]uuid.UUID),
		labels:   make(map[uuid.UUID]string),
		captures: make(map[string][]model.Routine),
		result:   NewResult(),
	}
	if h.epoch == 0 {
		h.epoch = DefaultEpoch
	}
	for _, opt := range opts {
		opt(h)
	}

	st, err := h.newStore()
	if err != nil {
		return nil, err
	}
	if err := st.Connect(dir, false); err != nil {
		return nil, fmt.Errorf("connect %s: %w", dir, err)
	}
	h.store = st

	for i := range scenario.Steps {
		h.executeStep(i, &scenario.Steps[i])
	}

	for _, msg := range h.evaluateCounts(scenario.Assertions) {
		h.result.AddError(msg)
	}
	if err := h.store.Close(); err != nil {
		h.result.AddError(fmt.Sprintf("final flush: %v", err))
	}
	for _, msg := range h.evaluateDocuments(scenario.Assertions) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

func (h *Harness) newStore() (*schedule.Store, error) {
	st, err := schedule.New(
		schedule.WithLogger(h.logger),
		schedule.WithIDGenerator(h.ids),
	)
	if err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}
	return st, nil
}

func (h *Harness) executeStep(i int, st *Step) {
	event := TraceEvent{Seq: i + 1, Op: st.Op}
	ok, err := h.apply(st, &event)
	if err != nil {
		h.result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, st.Op, err))
		event.Error = "invalid_step"
		h.result.Trace = append(h.result.Trace, event)
		return
	}
	event.OK = ok
	h.result.Trace = append(h.result.Trace, event)

	for _, msg := range checkExpect(st, &event) {
		h.result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, st.Op, msg))
	}
}

// apply performs the step. A non-nil error means the step itself could
// not be interpreted, for example because it names an unknown label.
func (h *Harness) apply(st *Step, event *TraceEvent) (bool, error) {
	switch st.Op {
	case OpCreateUser:
		if _, taken := h.users[st.As]; taken {
			return false, fmt.Errorf("user label %q already bound", st.As)
		}
		nickname := st.Nickname
		if nickname == "" {
			nickname = st.Name
		}
		u, ok := h.store.CreateUser(st.Name, nickname, st.Admin != nil && *st.Admin)
		if ok {
			h.users[st.As] = u.ID
			h.labels[u.ID] = st.As
		}
		return ok, nil

	case OpUpdateUser:
		id, err := h.user(st.User)
		if err != nil {
			return false, err
		}
		u, ok := h.store.LookupUser(id)
		if !ok {
			return false, nil
		}
		if st.Nickname != "" {
			u.Nickname = st.Nickname
		}
		if st.Admin != nil {
			u.IsAdmin = *st.Admin
		}
		if st.Theme != nil {
			theme, err := model.ParseTheme(*st.Theme)
			if err != nil {
				return false, err
			}
			u.Preferences.Theme = theme
		}
		return h.store.UpdateUser(u), nil

	case OpRemoveUser:
		id, err := h.user(st.User)
		if err != nil {
			return false, err
		}
		return h.store.RemoveUser(id), nil

	case OpUpsertPublic:
		r, err := h.buildRoutine(st.Routine)
		if err != nil {
			return false, err
		}
		h.store.UpsertPublic(r)
		return true, nil

	case OpRemovePublic:
		id, err := h.target(st.Target)
		if err != nil {
			return false, err
		}
		return h.store.RemovePublic(id), nil

	case OpUpsertPersonal, OpSave:
		owner, err := h.user(st.User)
		if err != nil {
			return false, err
		}
		r, err := h.buildRoutine(st.Routine)
		if err != nil {
			return false, err
		}
		if st.Op == OpSave {
			return h.store.SaveFromUserView(owner, r), nil
		}
		return h.store.UpsertPersonal(owner, r), nil

	case OpRemovePersonal:
		owner, err := h.user(st.User)
		if err != nil {
			return false, err
		}
		id, err := h.target(st.Target)
		if err != nil {
			return false, err
		}
		return h.store.RemovePersonal(owner, id), nil

	case OpSetEnded:
		owner, err := h.user(st.User)
		if err != nil {
			return false, err
		}
		id, err := h.target(st.Target)
		if err != nil {
			return false, err
		}
		return h.store.SetEnded(owner, id, *st.Ended), nil

	case OpRange:
		return h.rangeStep(st, event)

	case OpFlush:
		if err := h.store.Flush(); err != nil {
			event.Error = "flush_failed"
			return false, nil
		}
		return true, nil

	case OpWriteDoc:
		if err := h.store.Close(); err != nil {
			event.Error = "flush_failed"
		}
		path := filepath.Join(h.dir, st.Document)
		if err := os.WriteFile(path, []byte(st.Content), 0o644); err != nil {
			return false, fmt.Errorf("write %s: %w", st.Document, err)
		}
		return event.Error == "", nil

	case OpReconnect:
		if err := h.store.Close(); err != nil {
			return false, fmt.Errorf("close before reconnect: %w", err)
		}
		fresh, err := h.newStore()
		if err != nil {
			return false, err
		}
		h.store = fresh
		if err := fresh.Connect(h.dir, false); err != nil {
			event.Error = errorKind(err)
			return false, nil
		}
		return true, nil
	}
	return false, fmt.Errorf("unknown op %q", st.Op)
}

func (h *Harness) rangeStep(st *Step, event *TraceEvent) (bool, error) {
	owner, err := h.user(st.User)
	if err != nil {
		return false, err
	}
	days := st.Days
	if days == 0 {
		days = 7
	}
	start, err := h.startOf(st.FromDay, 0)
	if err != nil {
		return false, err
	}
	end := start + days*model.SecondsPerDay

	list, ok := h.store.Range(owner, start, end)
	if !ok {
		return false, nil
	}
	if st.As != "" {
		h.captures[st.As] = list
	}
	event.Routines = make([]RoutineView, len(list))
	for i, r := range list {
		event.Routines[i] = h.view(r)
	}
	return true, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, schedule.ErrStorageCorrupted):
		return ErrorCorrupted
	case errors.Is(err, schedule.ErrStorageNotAccessible):
		return ErrorNotAccessible
	default:
		return "unknown"
	}
}

func (h *Harness) user(label string) (uuid.UUID, error) {
	id, ok := h.users[label]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown user %q", label)
	}
	return id, nil
}

// target resolves a routine label or a capture reference to an id.
func (h *Harness) target(ref string) (uuid.UUID, error) {
	if refPattern.MatchString(ref) {
		r, err := h.captured(ref)
		if err != nil {
			return uuid.Nil, err
		}
		return r.ID, nil
	}
	id, ok := h.routines[ref]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown routine %q", ref)
	}
	return id, nil
}

func (h *Harness) captured(ref string) (model.Routine, error) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil {
		return model.Routine{}, fmt.Errorf("bad reference %q", ref)
	}
	list, ok := h.captures[m[1]]
	if !ok {
		return model.Routine{}, fmt.Errorf("unknown capture %q", m[1])
	}
	i, _ := strconv.Atoi(m[2])
	if i >= len(list) {
		return model.Routine{}, fmt.Errorf("%s: capture holds %d routines", ref, len(list))
	}
	return list[i].Clone(), nil
}

// buildRoutine turns a scenario routine into a model routine, binding its
// label on first use.
func (h *Harness) buildRoutine(rs *RoutineSpec) (model.Routine, error) {
	var r model.Routine
	if rs.From != "" {
		var err error
		if r, err = h.captured(rs.From); err != nil {
			return model.Routine{}, err
		}
		if rs.ID != "" {
			if id, bound := h.routines[rs.ID]; bound && id != r.ID {
				return model.Routine{}, fmt.Errorf("routine label %q already bound", rs.ID)
			}
			h.bindRoutine(rs.ID, r.ID)
		}
	} else {
		id, bound := h.routines[rs.ID]
		if !bound {
			id = h.ids.NewID()
			h.bindRoutine(rs.ID, id)
		}
		r = model.Routine{ID: id, Name: rs.ID}
	}

	at, err := parseClock(rs.At)
	if err != nil {
		return model.Routine{}, err
	}
	switch {
	case rs.Day != nil:
		if r.Start, err = h.startOf(*rs.Day, at); err != nil {
			return model.Routine{}, err
		}
	case rs.At != "":
		r.Start = r.Start/model.SecondsPerDay*model.SecondsPerDay + at
	}

	if rs.Duration != "" {
		d, err := time.ParseDuration(rs.Duration)
		if err != nil {
			return model.Routine{}, err
		}
		r.Duration = uint64(d / time.Second)
	}
	if rs.Name != nil {
		r.Name = *rs.Name
	}
	if rs.Description != nil {
		r.Description = *rs.Description
	}
	if rs.Ended != nil {
		r.IsEnded = *rs.Ended
	}
	if rep := rs.Repeat; rep != nil {
		flags := make([]bool, rep.Cycle)
		for _, d := range rep.Days {
			flags[d] = true
		}
		r.Template = model.Repeating{DaysCycle: rep.Cycle, Cycles: rep.Cycles, DaysFlags: flags}
	}
	return r, nil
}

func (h *Harness) bindRoutine(label string, id uuid.UUID) {
	h.routines[label] = id
	h.labels[id] = label
}

// startOf returns the time day days after the epoch plus at seconds.
func (h *Harness) startOf(day int, at uint64) (uint64, error) {
	t := int64(h.epoch) + int64(day)*int64(model.SecondsPerDay) + int64(at)
	if t < 0 {
		return 0, fmt.Errorf("day %d is before the Unix epoch", day)
	}
	return uint64(t), nil
}

func parseClock(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("at %q is not HH:MM", s)
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return uint64(hh*3600 + mm*60), nil
}

// formatStart renders start as "day@HH:MM" relative to the epoch.
func (h *Harness) formatStart(start uint64) string {
	offset := int64(start) - int64(h.epoch)
	day := offset / int64(model.SecondsPerDay)
	rem := offset % int64(model.SecondsPerDay)
	if rem < 0 {
		day--
		rem += int64(model.SecondsPerDay)
	}
	return fmt.Sprintf("%d@%02d:%02d", day, rem/3600, rem%3600/60)
}

func (h *Harness) view(r model.Routine) RoutineView {
	v := RoutineView{
		ID:       h.labels[r.ID],
		Start:    h.formatStart(r.Start),
		Name:     r.Name,
		Ghost:    r.IsGhost,
		Ended:    r.IsEnded,
		Template: model.TemplateKind(r.Template),
	}
	if src, ok := model.SourceOf(r.Template); ok {
		v.Source = h.labels[src]
	}
	return v
}

func checkExpect(st *Step, event *TraceEvent) []string {
	var msgs []string
	exp := st.Expect
	if exp == nil {
		exp = &Expect{}
	}

	if event.OK == exp.Fail && exp.Error == "" {
		msgs = append(msgs, fmt.Sprintf("expected ok=%v, got ok=%v", !exp.Fail, event.OK))
	}
	if exp.Error != "" && event.Error != exp.Error {
		msgs = append(msgs, fmt.Sprintf("expected error %q, got %q", exp.Error, event.Error))
	}
	if exp.Count != nil && len(event.Routines) != *exp.Count {
		msgs = append(msgs, fmt.Sprintf("expected %d routines, got %d", *exp.Count, len(event.Routines)))
	}
	if exp.Starts != nil {
		got := make([]string, len(event.Routines))
		for i, r := range event.Routines {
			got[i] = r.Start
		}
		if strings.Join(got, ",") != strings.Join(exp.Starts, ",") {
			msgs = append(msgs, fmt.Sprintf("expected starts %v, got %v", exp.Starts, got))
		}
	}
	return msgs
}
