package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vidgrab/vidgrab/server"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s)\n",
				server.BuildServiceName, server.BuildServiceVersion, server.BuildCommit)
			return err
		},
	}
}
