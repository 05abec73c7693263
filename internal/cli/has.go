package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/directdict/internal/lookup"
)

// NewHasCommand creates the has command.
func NewHasCommand(rootOpts *RootOptions) *cobra.Command {
	var keys string

	cmd := &cobra.Command{
		Use:   "has <definition>",
		Short: "Report which keys the source has",
		Long: `Report 1 for every key present in the source and 0 otherwise.

Example:
  directdict has regions.yaml --keys '[1,2,42]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(rootOpts, cmd)
			if err := p.requireFlag("keys", keys); err != nil {
				return err
			}
			parsed, err := p.parseFlagJSON("keys", keys)
			if err != nil {
				return err
			}
			return runQuery(rootOpts, cmd, args[0], lookup.Request{Op: lookup.OpHas, Keys: parsed})
		},
	}

	cmd.Flags().StringVar(&keys, "keys", "", "keys as a JSON list")
	return cmd
}
