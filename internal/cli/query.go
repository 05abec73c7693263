package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/lookup"
	"github.com/roach88/directdict/internal/metrics"
)

// QueryResult is the JSON payload of a lookup command.
type QueryResult struct {
	Dictionary string             `json:"dictionary"`
	Layout     string             `json:"layout"`
	Op         string             `json:"op"`
	Output     []any              `json:"output"`
	QueryCount uint64             `json:"query_count"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// runQuery opens the dictionary at configPath and runs req against it.
func runQuery(opts *RootOptions, cmd *cobra.Command, configPath string, req lookup.Request) error {
	p := newPrinter(opts, cmd)
	ctx := cmd.Context()

	handle, err := openDictionary(ctx, configPath)
	if err != nil {
		return p.loadFailed(err)
	}
	defer handle.Close()

	dict := handle.Dictionary
	p.Debugf("Dictionary %s (%s), source %s", dict.FullName(), dict.Layout(), dict.Source())

	output, err := lookup.Run(ctx, dict, req)
	if err != nil {
		code := string(dicterr.CodeOf(err))
		if code == "" {
			code = ErrCodeGeneric
		}
		return p.Fail(exitf(ExitFailure, "%s failed: %w", req.Op, err), Problem{
			Code:       code,
			Message:    err.Error(),
			Op:         req.Op,
			Dictionary: dict.FullName(),
		}, nil)
	}

	result := QueryResult{
		Dictionary: dict.FullName(),
		Layout:     dict.Layout(),
		Op:         req.Op,
		Output:     output,
		QueryCount: dict.QueryCount(),
	}

	var registry *prometheus.Registry
	if opts.Metrics {
		registry = prometheus.NewRegistry()
		registry.MustRegister(metrics.NewCollector(dict))
		if p.JSON {
			if result.Metrics, err = metrics.Snapshot(registry); err != nil {
				return fmt.Errorf("failed to gather metrics: %w", err)
			}
		}
	}

	return p.Result(result, func(w io.Writer) error {
		for _, v := range output {
			fmt.Fprintln(w, formatText(v))
		}
		if registry == nil {
			return nil
		}
		fmt.Fprintln(w)
		return metrics.WriteText(w, registry)
	})
}

// parseFlagJSON decodes a JSON flag value, mapping failures to a usage error.
func (p *Printer) parseFlagJSON(name, value string) (any, error) {
	v, err := lookup.ParseJSON(value)
	if err != nil {
		return nil, p.Fail(exitf(ExitUsage, "invalid --%s: %w", name, err),
			Problem{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("--%s: %v", name, err)}, nil)
	}
	return v, nil
}

// requireFlag fails with a usage error when a mandatory flag is empty.
func (p *Printer) requireFlag(name, value string) error {
	if value != "" {
		return nil
	}
	msg := fmt.Sprintf("--%s is required", name)
	return p.Fail(exitf(ExitUsage, "%s", msg), Problem{Code: ErrCodeInvalidInput, Message: msg}, nil)
}

// loadFailed reports a definition that could not be loaded or opened.
func (p *Printer) loadFailed(err error) error {
	prob := Problem{Code: ErrCodeGeneric, Message: err.Error()}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		prob = Problem{Code: loadErr.Code, Message: loadErr.Message}
	}
	return p.Fail(exitf(ExitUsage, "failed to open dictionary: %w", err), prob, nil)
}

// formatText renders one output value. Dump rows are tab separated.
func formatText(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []any:
		cells := make([]string, len(val))
		for i, cell := range val {
			cells[i] = formatText(cell)
		}
		return strings.Join(cells, "\t")
	default:
		return fmt.Sprint(val)
	}
}
