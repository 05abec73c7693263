package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Step       int            `json:"step"`
	Op         string         `json:"op"`
	Inputs     map[string]any `json:"inputs,omitempty"`
	Output     []any          `json:"output,omitempty"`
	Error      string         `json:"error,omitempty"`
	RoundTrips int64          `json:"round_trips"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// QueryCount is the dictionary's query counter after the last step.
	QueryCount uint64 `json:"query_count"`

	// RoundTrips is the total number of source round trips.
	RoundTrips int64 `json:"round_trips"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step to the trace.
func (r *Result) AddStep(event TraceEvent) {
	r.Trace = append(r.Trace, event)
	r.RoundTrips += event.RoundTrips
}
