package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/directdict/internal/config"
	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/lookup"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/testutil"
)

// Harness executes the steps of one scenario.
type Harness struct {
	handle   *config.Handle
	counting *testutil.CountingSource
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh dictionary. Step failures and unmet
// expectations are reported in the result; the returned error is reserved
// for scenarios that cannot run at all (bad definition, missing source).
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	handle, err := scenario.Dictionary.Open(ctx,
		config.WithIDGenerator(testutil.NewFixedIDGenerator(uuid.Nil)),
		config.WithSourceWrapper(func(src source.Source) source.Source {
			h.counting = testutil.NewCountingSource(src)
			return h.counting
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer handle.Close()
	h.handle = handle

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}
	result.QueryCount = handle.Dictionary.QueryCount()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) {
	before := h.counting.RoundTrips()
	output, err := lookup.Run(ctx, h.handle.Dictionary, step.Request)

	event := TraceEvent{
		Step:       i,
		Op:         step.Op,
		Inputs:     step.Inputs(),
		Output:     output,
		RoundTrips: h.counting.RoundTrips() - before,
	}
	if err != nil {
		event.Error = err.Error()
	}
	result.AddStep(event)

	h.logger.Info("step completed",
		"step", i,
		"op", step.Op,
		"round_trips", event.RoundTrips,
		"error", event.Error,
	)

	switch {
	case step.ExpectError != "":
		if err == nil {
			result.AddError(fmt.Sprintf("step %d (%s): expected error %q, got output %v", i, step.Op, step.ExpectError, output))
			return
		}
		if string(dicterr.CodeOf(err)) != step.ExpectError && !strings.Contains(err.Error(), step.ExpectError) {
			result.AddError(fmt.Sprintf("step %d (%s): expected error %q, got %v", i, step.Op, step.ExpectError, err))
		}
	case err != nil:
		result.AddError(fmt.Sprintf("step %d (%s): %v", i, step.Op, err))
	case step.Expect != nil:
		if msg := compareOutput(step.Expect, output); msg != "" {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Op, msg))
		}
	}
}

// compareOutput compares expected and actual values through canonical JSON,
// so 1 from YAML equals uint64(1) from a column.
func compareOutput(expect any, output []any) string {
	want, err := field.MarshalCanonical(expect)
	if err != nil {
		return fmt.Sprintf("invalid expect: %v", err)
	}
	got, err := field.MarshalCanonical(output)
	if err != nil {
		return fmt.Sprintf("unencodable output: %v", err)
	}
	if string(want) != string(got) {
		return fmt.Sprintf("expected %s, got %s", want, got)
	}
	return ""
}
