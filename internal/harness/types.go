package harness

// LogEntry records one step of a run.
type LogEntry struct {
	Step     int    `json:"step"` // 1-based
	Call     string `json:"call"`
	Params   []any  `json:"params"`
	MatchKey string `json:"match_key,omitempty"` // the record that answered, if any
	Return   any    `json:"return,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Log contains one entry per step, in order.
	Log []LogEntry `json:"log"`

	// Used is the ordered list of match keys that answered calls.
	Used []string `json:"used"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Log:    []LogEntry{},
		Used:   []string{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddLog appends a step entry.
func (r *Result) AddLog(entry LogEntry) {
	r.Log = append(r.Log, entry)
}
