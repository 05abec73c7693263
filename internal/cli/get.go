package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/directdict/internal/lookup"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Attribute string
	Keys      string
	Defaults  string
	Type      string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <definition>",
		Short: "Look up an attribute for a list of keys",
		Long: `Look up an attribute for a list of keys.

Keys missing from the source get the value from --defaults at the same
position, or the attribute's null value. One source round trip per call.

Examples:
  directdict get regions.yaml --attribute name --keys '[1,2,3]'
  directdict get labels.cue --attribute label --keys '[["us",1],["eu",7]]'
  directdict get regions.yaml --attribute parent --keys '[1,2]' --defaults '[0,0]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Attribute, "attribute", "", "attribute name")
	cmd.Flags().StringVar(&opts.Keys, "keys", "", "keys as a JSON list")
	cmd.Flags().StringVar(&opts.Defaults, "defaults", "", "per-key defaults as a JSON list")
	cmd.Flags().StringVar(&opts.Type, "type", "", "requested result type (defaults to the attribute type)")

	return cmd
}

func runGet(opts *GetOptions, path string, cmd *cobra.Command) error {
	p := newPrinter(opts.RootOptions, cmd)
	if err := p.requireFlag("attribute", opts.Attribute); err != nil {
		return err
	}
	if err := p.requireFlag("keys", opts.Keys); err != nil {
		return err
	}

	req := lookup.Request{Op: lookup.OpGet, Attribute: opts.Attribute, Type: opts.Type}
	var err error
	if req.Keys, err = p.parseFlagJSON("keys", opts.Keys); err != nil {
		return err
	}
	if opts.Defaults != "" {
		if req.Defaults, err = p.parseFlagJSON("defaults", opts.Defaults); err != nil {
			return err
		}
	}
	return runQuery(opts.RootOptions, cmd, path, req)
}
