package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/directdict/internal/harness"
)

// ErrCodeScenarioFailed is the JSON problem code when any scenario fails.
const ErrCodeScenarioFailed = "E_SCENARIO_FAILED"

// Golden trace states reported per scenario.
const (
	goldenNone     = ""         // no golden file next to the scenario
	goldenMatched  = "matched"  // trace equals the golden file
	goldenMismatch = "mismatch" // trace differs from the golden file
	goldenUpdated  = "updated"  // golden file rewritten by --update
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden traces
	Filter string // glob over scenario names
}

// ScenarioReport is the outcome of one scenario file.
type ScenarioReport struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Pass       bool     `json:"pass"`
	RoundTrips int64    `json:"round_trips"`
	QueryCount uint64   `json:"query_count"`
	Golden     string   `json:"golden,omitempty"`
	Failures   []string `json:"failures,omitempty"`
}

func (r *ScenarioReport) fail(format string, args ...any) {
	r.Pass = false
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// RunSummary aggregates the reports of one test run.
type RunSummary struct {
	Scenarios  []ScenarioReport `json:"scenarios"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	RoundTrips int64            `json:"round_trips"`
}

func (s *RunSummary) add(r ScenarioReport) {
	s.Scenarios = append(s.Scenarios, r)
	s.RoundTrips += r.RoundTrips
	if r.Pass {
		s.Passed++
	} else {
		s.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run lookup scenarios",
		Long: `Run lookup scenarios with the harness.

Each scenario defines a dictionary inline, runs its steps and checks the
expected outputs and round trip counts. When golden/<name>.golden exists next
to the scenario file, the step trace must match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - The scenarios directory is missing or unreadable

Examples:
  directdict test ./testdata/scenarios
  directdict test ./testdata/scenarios --filter "region*"
  directdict test ./testdata/scenarios --update
  directdict test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden traces")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios matching this glob")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return exitf(ExitUsage, "scenarios directory not found: %s", dir)
	}
	files, err := harness.FindScenarios(dir, opts.Filter)
	if err != nil {
		return exitf(ExitUsage, "failed to find scenarios: %w", err)
	}

	p := newPrinter(opts.RootOptions, cmd)
	runner := scenarioRunner{update: opts.Update}
	summary := RunSummary{Scenarios: make([]ScenarioReport, 0, len(files))}
	for _, file := range files {
		report := runner.run(file)
		p.Debugf("%s: %d round trips, %d queries", report.File, report.RoundTrips, report.QueryCount)
		if !p.JSON {
			printReport(p.Out, report)
		}
		summary.add(report)
	}

	if summary.Failed > 0 {
		exit := exitf(ExitFailure, "%d scenario(s) failed", summary.Failed)
		if p.JSON {
			return p.Fail(exit, Problem{Code: ErrCodeScenarioFailed, Message: exit.Error()}, summary)
		}
		printSummary(p.Out, summary)
		return exit
	}
	return p.Result(summary, func(w io.Writer) error {
		printSummary(w, summary)
		return nil
	})
}

// scenarioRunner runs scenario files and checks or rewrites their golden traces.
type scenarioRunner struct {
	update bool
}

func (sr scenarioRunner) run(file string) ScenarioReport {
	report := ScenarioReport{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		report.fail("failed to load scenario: %v", err)
		return report
	}
	report.Name = scenario.Name

	result, err := harness.Run(scenario)
	if err != nil {
		report.fail("execution failed: %v", err)
		return report
	}
	report.Pass = result.Pass
	report.RoundTrips = result.RoundTrips
	report.QueryCount = result.QueryCount
	report.Failures = append(report.Failures, result.Errors...)

	trace, err := harness.MarshalTrace(scenario.Name, result)
	if err != nil {
		report.fail("failed to marshal trace: %v", err)
		return report
	}

	goldenPath := harness.GoldenPath(file)
	if sr.update {
		if err := writeGolden(goldenPath, trace); err != nil {
			report.fail("failed to update golden file: %v", err)
			return report
		}
		report.Golden = goldenUpdated
		return report
	}

	want, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		report.Golden = goldenNone
	case err != nil:
		report.fail("failed to read golden file: %v", err)
	case bytes.Equal(want, trace):
		report.Golden = goldenMatched
	default:
		report.Golden = goldenMismatch
		report.fail("trace does not match golden file (run with --update to regenerate)")
	}
	return report
}

func writeGolden(path string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	return os.WriteFile(path, trace, 0644)
}

func printReport(w io.Writer, r ScenarioReport) {
	if !r.Pass {
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s\n", f)
		}
		return
	}
	golden := ""
	if r.Golden != goldenNone {
		golden = ", golden " + r.Golden
	}
	fmt.Fprintf(w, "✓ %s (%d round trips, %d queries%s)\n", r.Name, r.RoundTrips, r.QueryCount, golden)
}

func printSummary(w io.Writer, s RunSummary) {
	if len(s.Scenarios) == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d scenarios: %d passed, %d failed, %d source round trips\n",
		len(s.Scenarios), s.Passed, s.Failed, s.RoundTrips)
	if s.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
