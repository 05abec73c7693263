package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	r := NewResult()
	r.AddStep(TraceEvent{Step: 0, Op: "get", RoundTrips: 1})
	r.AddStep(TraceEvent{Step: 1, Op: "isin", RoundTrips: 3})
	r.QueryCount = 4
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertRoundTrips, Step: 0, Count: 1},
		{Type: AssertRoundTrips, Step: 1, Count: 3},
		{Type: AssertTotalRoundTrips, Count: 4},
		{Type: AssertQueryCount, Count: 4},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		contains  string
	}{
		{"step round trips", Assertion{Type: AssertRoundTrips, Step: 1, Count: 2}, "Expected: step 1 round trips = 2"},
		{"total", Assertion{Type: AssertTotalRoundTrips, Count: 9}, "Actual: total round trips = 4"},
		{"query count", Assertion{Type: AssertQueryCount, Count: 1}, "Expected: query count = 1"},
		{"missing step", Assertion{Type: AssertRoundTrips, Step: 5}, "2 steps executed"},
		{"unknown", Assertion{Type: "trace_order"}, "unknown assertion type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.contains)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertQueryCount,
		Expected: "query count = 1",
		Actual:   "query count = 2",
		Trace:    []TraceEvent{{Step: 0, Op: "has", Inputs: map[string]any{"keys": []any{1}}, RoundTrips: 1}},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: query_count")
	assert.Contains(t, msg, "[0] has map[keys:[1]] round_trips=1")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
