package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1 // a lookup failed, a definition is invalid or a scenario did not pass
	ExitUsage   = 2 // bad flags or a missing definition or directory
)

// ExitError is returned by commands that need a specific exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// exitf builds an ExitError with a message formatted like fmt.Errorf, so a
// %w verb keeps the cause reachable.
func exitf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps a command error to the process exit code. Errors that carry
// no code are lookup failures.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitFailure
	}
}

// Envelope wraps every JSON document the CLI prints.
type Envelope struct {
	Status string   `json:"status"` // "ok" or "error"
	Data   any      `json:"data,omitempty"`
	Error  *Problem `json:"error,omitempty"`
}

// Problem describes why a command failed. Code is either a CLI code (E001..)
// or a dictionary error code such as TYPE_MISMATCH.
type Problem struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Op         string `json:"op,omitempty"`
	Dictionary string `json:"dictionary,omitempty"`
}

// Printer renders command results as text or JSON on Out. Debug lines go to
// Diag so they never interleave with a JSON document.
type Printer struct {
	JSON    bool
	Out     io.Writer
	Diag    io.Writer
	Verbose bool
}

func newPrinter(opts *RootOptions, cmd *cobra.Command) *Printer {
	return &Printer{
		JSON:    opts.Format == "json",
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}
}

// Result prints data as an ok envelope, or calls text to render it.
func (p *Printer) Result(data any, text func(w io.Writer) error) error {
	if p.JSON {
		return p.encode(Envelope{Status: "ok", Data: data})
	}
	return text(p.Out)
}

// Fail prints prob, with data as the payload when non-nil, and returns exit.
func (p *Printer) Fail(exit *ExitError, prob Problem, data any) error {
	if p.JSON {
		if err := p.encode(Envelope{Status: "error", Data: data, Error: &prob}); err != nil {
			return err
		}
		return exit
	}

	fmt.Fprintf(p.Out, "Error [%s]: %s\n", prob.Code, prob.Message)
	if p.Verbose && prob.Op != "" {
		fmt.Fprintf(p.Out, "  during %s on %s\n", prob.Op, prob.Dictionary)
	}
	return exit
}

// Debugf writes a diagnostic line when --verbose is set.
func (p *Printer) Debugf(format string, args ...any) {
	if !p.Verbose {
		return
	}
	w := p.Diag
	if w == nil {
		w = p.Out
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (p *Printer) encode(env Envelope) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
