package harness

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/routines/internal/codec"
)

// Scenario is a scripted sequence of store operations run against a fresh
// storage directory, with expectations checked along the way.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Epoch is the Unix time that routine day offsets count from.
	// Defaults to DefaultEpoch.
	Epoch uint64 `yaml:"epoch,omitempty"`

	// Steps run in order. A step whose expectation fails is recorded as an
	// error and the run continues.
	Steps []Step `yaml:"steps"`

	// Assertions check the store after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DefaultEpoch is midnight UTC on 2023-11-14.
const DefaultEpoch uint64 = 19675 * 86400

// Step is one store operation. Which fields apply depends on Op.
type Step struct {
	Op string `yaml:"op"`

	// User is the label of the user the step acts for.
	User string `yaml:"user,omitempty"`

	// As binds the result of the step to a label: the new user for
	// create_user, the returned routines for range.
	As string `yaml:"as,omitempty"`

	// create_user, update_user
	Name     string  `yaml:"name,omitempty"`
	Nickname string  `yaml:"nickname,omitempty"`
	Admin    *bool   `yaml:"admin,omitempty"`
	Theme    *string `yaml:"theme,omitempty"`

	// upsert_public, upsert_personal, save
	Routine *RoutineSpec `yaml:"routine,omitempty"`

	// remove_personal, remove_public, set_ended: label of the routine.
	// A reference like "week[2]" names an element of a captured range.
	Target string `yaml:"target,omitempty"`
	Ended  *bool  `yaml:"ended,omitempty"`

	// range: window of Days days starting FromDay days after the epoch.
	FromDay int    `yaml:"from_day,omitempty"`
	Days    uint64 `yaml:"days,omitempty"`

	// write_doc
	Document string `yaml:"document,omitempty"`
	Content  string `yaml:"content,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect states the outcome a step must have.
type Expect struct {
	// Fail expects the operation to report failure.
	Fail bool `yaml:"fail,omitempty"`

	// Error expects reconnect to fail with "corrupted" or "not_accessible".
	Error string `yaml:"error,omitempty"`

	// Count is the expected number of routines returned by range.
	Count *int `yaml:"count,omitempty"`

	// Starts lists the expected "day@HH:MM" start of every returned routine.
	Starts []string `yaml:"starts,omitempty"`
}

// RoutineSpec describes a routine in scenario terms.
type RoutineSpec struct {
	// ID labels the routine. A new label gets a fresh id.
	ID string `yaml:"id,omitempty"`

	// From copies a captured routine ("week[1]") before applying the
	// remaining fields.
	From string `yaml:"from,omitempty"`

	Day         *int    `yaml:"day,omitempty"`
	At          string  `yaml:"at,omitempty"`
	Duration    string  `yaml:"duration,omitempty"`
	Name        *string `yaml:"name,omitempty"`
	Description *string `yaml:"description,omitempty"`
	Ended       *bool   `yaml:"ended,omitempty"`
	Repeat      *Repeat `yaml:"repeat,omitempty"`
}

// Repeat is a recurrence rule: Cycle days per cycle, Cycles cycles (zero
// for unbounded), with occurrences on the listed day offsets.
type Repeat struct {
	Cycle  uint32 `yaml:"cycle"`
	Cycles uint32 `yaml:"cycles,omitempty"`
	Days   []int  `yaml:"days"`
}

// Step operations.
const (
	OpCreateUser     = "create_user"
	OpUpdateUser     = "update_user"
	OpRemoveUser     = "remove_user"
	OpUpsertPublic   = "upsert_public"
	OpRemovePublic   = "remove_public"
	OpUpsertPersonal = "upsert_personal"
	OpRemovePersonal = "remove_personal"
	OpSave           = "save"
	OpSetEnded       = "set_ended"
	OpRange          = "range"
	OpFlush          = "flush"
	OpWriteDoc       = "write_doc"
	OpReconnect      = "reconnect"
)

// Connect error kinds accepted by Expect.Error.
const (
	ErrorCorrupted     = "corrupted"
	ErrorNotAccessible = "not_accessible"
)

// Assertion checks the final store state.
type Assertion struct {
	// Type is one of user_count, routine_count, public_count or
	// document_contains.
	Type string `yaml:"type"`

	// User is the label of the user (routine_count).
	User string `yaml:"user,omitempty"`

	// Count is the expected number of entries.
	Count int `yaml:"count,omitempty"`

	// Document and Text: the flushed document must contain Text.
	Document string `yaml:"document,omitempty"`
	Text     string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertUserCount        = "user_count"
	AssertRoutineCount     = "routine_count"
	AssertPublicCount      = "public_count"
	AssertDocumentContains = "document_contains"
)

var (
	refPattern   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\[(\d+)\]$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Epoch == 0 {
		scenario.Epoch = DefaultEpoch
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpCreateUser:
		if st.As == "" {
			return fmt.Errorf("steps[%d]: as is required for create_user", index)
		}
	case OpUpdateUser, OpRemoveUser:
		if st.User == "" {
			return fmt.Errorf("steps[%d]: user is required for %s", index, st.Op)
		}
	case OpUpsertPublic:
		if err := validateRoutine(index, st.Routine); err != nil {
			return err
		}
	case OpUpsertPersonal, OpSave:
		if st.User == "" {
			return fmt.Errorf("steps[%d]: user is required for %s", index, st.Op)
		}
		if err := validateRoutine(index, st.Routine); err != nil {
			return err
		}
	case OpRemovePublic:
		if st.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for remove_public", index)
		}
	case OpRemovePersonal, OpSetEnded:
		if st.User == "" || st.Target == "" {
			return fmt.Errorf("steps[%d]: user and target are required for %s", index, st.Op)
		}
		if st.Op == OpSetEnded && st.Ended == nil {
			return fmt.Errorf("steps[%d]: ended is required for set_ended", index)
		}
	case OpRange:
		if st.User == "" {
			return fmt.Errorf("steps[%d]: user is required for range", index)
		}
	case OpWriteDoc:
		if st.Document != string(codec.DocIndex) && st.Document != string(codec.DocRoutines) {
			return fmt.Errorf("steps[%d]: unknown document %q", index, st.Document)
		}
	case OpFlush, OpReconnect:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	if st.Expect == nil {
		return nil
	}
	switch st.Expect.Error {
	case "", ErrorCorrupted, ErrorNotAccessible:
	default:
		return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, st.Expect.Error)
	}
	if st.Expect.Error != "" && st.Op != OpReconnect {
		return fmt.Errorf("steps[%d].expect: error only applies to reconnect", index)
	}
	if (st.Expect.Count != nil || st.Expect.Starts != nil) && st.Op != OpRange {
		return fmt.Errorf("steps[%d].expect: count and starts only apply to range", index)
	}
	return nil
}

func validateRoutine(index int, r *RoutineSpec) error {
	if r == nil {
		return fmt.Errorf("steps[%d]: routine is required", index)
	}
	if r.ID == "" && r.From == "" {
		return fmt.Errorf("steps[%d].routine: id or from is required", index)
	}
	if r.From != "" && !refPattern.MatchString(r.From) {
		return fmt.Errorf("steps[%d].routine: from %q is not of the form name[index]", index, r.From)
	}
	if r.From == "" && r.Day == nil {
		return fmt.Errorf("steps[%d].routine: day is required", index)
	}
	if r.At != "" && !clockPattern.MatchString(r.At) {
		return fmt.Errorf("steps[%d].routine: at %q is not HH:MM", index, r.At)
	}
	if r.Duration != "" {
		d, err := time.ParseDuration(r.Duration)
		if err != nil || d < 0 || d%time.Second != 0 {
			return fmt.Errorf("steps[%d].routine: invalid duration %q", index, r.Duration)
		}
	}
	if rep := r.Repeat; rep != nil {
		if rep.Cycle == 0 {
			return fmt.Errorf("steps[%d].routine.repeat: cycle must be positive", index)
		}
		for _, d := range rep.Days {
			if d < 0 || d >= int(rep.Cycle) {
				return fmt.Errorf("steps[%d].routine.repeat: day %d outside cycle of %d", index, d, rep.Cycle)
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertUserCount, AssertPublicCount:
	case AssertRoutineCount:
		if a.User == "" {
			return fmt.Errorf("assertions[%d]: user is required for routine_count", index)
		}
	case AssertDocumentContains:
		if a.Document != string(codec.DocIndex) && a.Document != string(codec.DocRoutines) {
			return fmt.Errorf("assertions[%d]: unknown document %q", index, a.Document)
		}
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for document_contains", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}
	return nil
}
