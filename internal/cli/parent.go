package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/directdict/internal/lookup"
)

// NewParentCommand creates the parent command.
func NewParentCommand(rootOpts *RootOptions) *cobra.Command {
	var ids string

	cmd := &cobra.Command{
		Use:   "parent <definition>",
		Short: "Look up the parent id of each id",
		Long: `Look up the hierarchical attribute for each id. Ids missing from the
source get the attribute's null value.

Example:
  directdict parent regions.yaml --ids '[1,2,3]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(rootOpts, cmd)
			if err := p.requireFlag("ids", ids); err != nil {
				return err
			}
			parsed, err := p.parseFlagJSON("ids", ids)
			if err != nil {
				return err
			}
			return runQuery(rootOpts, cmd, args[0], lookup.Request{Op: lookup.OpParent, IDs: parsed})
		},
	}

	cmd.Flags().StringVar(&ids, "ids", "", "ids as a JSON list")
	return cmd
}
