package command

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/delicious2fluid/internal/app"
)

// NewSandboxCmd creates the sandbox command.
func NewSandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve an in-memory FluidDB for trial imports",
		Long: `Start a local, in-memory server speaking the subset of the FluidDB HTTP API
used by import. Every account from fluiddb.username and sandbox.users gets a
top-level namespace. Data is lost when the process exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			listen, _ := cmd.Flags().GetString("listen")
			return a.RunSandbox(cmd.Context(), listen)
		},
	}

	cmd.Flags().String("listen", "", "listen address (default: sandbox.listen)")

	return cmd
}
