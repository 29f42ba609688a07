package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/delicious2fluid/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit=%s, built=%s, %s)\n",
				AppName, version.Version, version.Commit, version.BuildDate, version.GoVersion)
		},
	}
}
