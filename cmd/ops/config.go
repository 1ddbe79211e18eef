// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsrun/ops/internal/config"
)

// newConfigCommand creates the `ops config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect ops configuration",
		Long: `Inspect ops configuration.

Settings are read from $XDG_CONFIG_HOME/ops/config.cue (or --config) and
can be overridden with OPS_* environment variables, for example
OPS_CONTAINER_ENGINE=podman or OPS_UI_VERBOSE=true. Command-line flags win
over both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprint(app.stdout, config.GenerateCUE(app.settings))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		// The file may be missing or broken; do not load it.
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			app.initLogging(app.flags.verbose)
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.FilePath(config.LoadOptions{ConfigFilePath: app.flags.configPath})
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}
