package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/directdict/internal/lookup"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <definition>",
		Short: "Stream every row of the source",
		Long: `Stream every row of the dictionary's source, key columns first, one row
per line with tab separated values.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, cmd, args[0], lookup.Request{Op: lookup.OpDump})
		},
	}
}
