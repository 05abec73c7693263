package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/directdict/internal/lookup"
)

// IsInOptions holds flags for the isin command.
type IsInOptions struct {
	*RootOptions
	Child    string
	Ancestor string
}

// NewIsInCommand creates the isin command.
func NewIsInCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IsInOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "isin <definition>",
		Short: "Test hierarchy membership",
		Long: `Test whether each child id has the ancestor id in its parent chain.

Either side may be a JSON list or a single id. Two lists are compared row by
row; a single id is compared against every row of the other side. Each level
of the walk costs one source round trip.

Examples:
  directdict isin regions.yaml --child '[1,2,3]' --ancestor 3
  directdict isin regions.yaml --child '[1,2]' --ancestor '[3,1]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIsIn(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Child, "child", "", "child ids as JSON (list or scalar)")
	cmd.Flags().StringVar(&opts.Ancestor, "ancestor", "", "ancestor ids as JSON (list or scalar)")

	return cmd
}

func runIsIn(opts *IsInOptions, path string, cmd *cobra.Command) error {
	p := newPrinter(opts.RootOptions, cmd)
	if err := p.requireFlag("child", opts.Child); err != nil {
		return err
	}
	if err := p.requireFlag("ancestor", opts.Ancestor); err != nil {
		return err
	}

	req := lookup.Request{Op: lookup.OpIsIn}
	var err error
	if req.Child, err = p.parseFlagJSON("child", opts.Child); err != nil {
		return err
	}
	if req.Ancestor, err = p.parseFlagJSON("ancestor", opts.Ancestor); err != nil {
		return err
	}
	return runQuery(opts.RootOptions, cmd, path, req)
}
