package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/delicious2fluid/internal/config"
)

const AppName = "delicious2fluid"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Copy delicious bookmarks into FluidDB",
		Long:          "delicious2fluid fetches a delicious bookmark export and stores every bookmark as a FluidDB object tagged with its attributes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("config", "", "YAML configuration file (D2F_* variables override it)")
	cmd.PersistentFlags().String("log-level", "", "console log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-file", "", "debug log file, empty to disable")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")

	cmd.AddCommand(
		NewImportCmd(),
		NewSandboxCmd(),
		NewStatusCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// loadConfig reads --config and applies the persistent logging flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile, _ = cmd.Flags().GetString("log-file")
	}
	return cfg, nil
}
