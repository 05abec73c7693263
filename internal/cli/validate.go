package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/directdict/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool                     `json:"valid"`
	Dictionary string                   `json:"dictionary,omitempty"`
	Layout     string                   `json:"layout,omitempty"`
	Source     string                   `json:"source,omitempty"`
	Errors     []config.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definition>",
		Short: "Validate a dictionary definition",
		Long: `Validate a YAML or CUE dictionary definition.

Parses the file, checks every field, opens the source and creates the
dictionary without running a lookup. All field problems are reported at once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	p := newPrinter(opts, cmd)

	f, err := LoadDefinition(path)
	if err != nil {
		return p.loadFailed(err)
	}
	p.Debugf("Loaded %s definition %q from %s", f.Layout, f.Name, path)

	if errs := f.Validate(); len(errs) > 0 {
		return p.invalid(errs)
	}

	handle, err := f.Open(cmd.Context())
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			return p.invalid(verrs)
		}
		return p.invalid(config.ValidationErrors{{
			Field:   "definition",
			Message: err.Error(),
			Code:    ErrCodeOpenFailed,
		}})
	}
	defer handle.Close()

	result := ValidationResult{
		Valid:      true,
		Dictionary: handle.Dictionary.FullName(),
		Layout:     handle.Dictionary.Layout(),
		Source:     handle.Dictionary.Source().String(),
	}
	return p.Result(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s valid (layout %s, source %s)\n", result.Dictionary, result.Layout, result.Source)
		return err
	})
}

// invalid reports every field error. The first one becomes the envelope's
// problem in JSON output.
func (p *Printer) invalid(errs config.ValidationErrors) error {
	exit := exitf(ExitFailure, "validation failed with %d error(s)", len(errs))
	if p.JSON {
		return p.Fail(exit, Problem{Code: errs[0].Code, Message: errs[0].Message},
			ValidationResult{Valid: false, Errors: errs})
	}

	fmt.Fprintln(p.Out, "✗ Validation failed")
	fmt.Fprintln(p.Out)
	for _, err := range errs {
		fmt.Fprintf(p.Out, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}
	return exit
}
