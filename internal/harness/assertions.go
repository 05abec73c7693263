package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %v round_trips=%d\n", event.Step, event.Op, event.Inputs, event.RoundTrips)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	var actual int64
	var what string

	switch a.Type {
	case AssertRoundTrips:
		if a.Step < 0 || a.Step >= len(result.Trace) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("step %d", a.Step),
				Actual:   fmt.Sprintf("%d steps executed", len(result.Trace)),
				Trace:    result.Trace,
			}
		}
		actual = result.Trace[a.Step].RoundTrips
		what = fmt.Sprintf("step %d round trips", a.Step)
	case AssertTotalRoundTrips:
		actual = result.RoundTrips
		what = "total round trips"
	case AssertQueryCount:
		actual = int64(result.QueryCount)
		what = "query count"
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}

	if actual != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %d", what, a.Count),
			Actual:   fmt.Sprintf("%s = %d", what, actual),
			Trace:    result.Trace,
		}
	}
	return nil
}
