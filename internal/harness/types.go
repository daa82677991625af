package harness

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	Seq int    `json:"seq"`
	Op  string `json:"op"`
	OK  bool   `json:"ok"`

	// Error names the failure kind: corrupted, not_accessible,
	// flush_failed or invalid_step.
	Error string `json:"error,omitempty"`

	// Routines is the window returned by a range step.
	Routines []RoutineView `json:"routines,omitempty"`
}

// RoutineView is a routine rendered in scenario terms. Ids are shown as
// their labels; generated occurrences have no label.
type RoutineView struct {
	ID       string `json:"id,omitempty"`
	Start    string `json:"start"`
	Name     string `json:"name"`
	Ghost    bool   `json:"ghost"`
	Ended    bool   `json:"ended"`
	Template string `json:"template"`
	Source   string `json:"source,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes every failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
