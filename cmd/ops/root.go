// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/opsrun/ops/internal/config"
	"github.com/opsrun/ops/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// NewRootCommand builds the ops command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	cobra.EnablePrefixMatching = true

	root := &cobra.Command{
		Use:   "ops",
		Short: "Run project missions in containers",
		Long: TitleStyle.Render("ops") + SubtitleStyle.Render(" - declarative container task runner") + `

A plan file (Ops.yaml, Ops.yml, Ops.toml) next to your sources names
missions: scripts fed to a container's standard input. Every container
gets the working directory and the container daemon socket mounted.

` + SubtitleStyle.Render("Examples:") + `
  ops execute               Run every mission
  ops execute lint          Run missions whose name contains "lint"
  ops execute --dry-run     Print the engine commands without running them
  ops shell                 Open the plan's interactive shell
  ops shell make test       Run a command in the shell container`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd.Context())
		},
	}

	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	flags := root.PersistentFlags()
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ops/config.cue)")
	flags.StringVarP(&app.flags.planFile, "file", "f", "", "plan file (default: discover Ops.yaml, Ops.yml, Ops.toml)")
	flags.StringVar(&app.flags.engine, "engine", "", "container engine: docker or podman")

	root.AddCommand(
		newExecuteCommand(app),
		newShellCommand(app),
		newValidateCommand(app),
		newConfigCommand(app),
	)
	return root
}

// setup configures logging from the flags, loads the settings and then
// reconfigures logging from the merged result.
func (a *App) setup(ctx context.Context) error {
	a.initLogging(a.flags.verbose)

	cfg, err := a.loadSettings(ctx)
	if err != nil {
		return err
	}
	a.settings = cfg
	a.initLogging(cfg.UI.Verbose)
	return nil
}

// initLogging installs a charm log handler as the slog default. Every
// record carries the id of this run.
func (a *App) initLogging(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	slog.SetDefault(slog.New(handler).With("run", runID))
}

var runID = uuid.NewString()

func (a *App) verbose() bool {
	if a.settings != nil {
		return a.settings.UI.Verbose
	}
	return a.flags.verbose
}

func (a *App) colorScheme() string {
	if a.settings != nil {
		return a.settings.UI.ColorScheme.String()
	}
	return config.ColorSchemeAuto.String()
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Run executes the command line args against app and returns the process
// exit code.
func Run(ctx context.Context, app *App, args []string) types.ExitCode {
	root := NewRootCommand(app)
	root.SetArgs(args)

	err := fang.Execute(ctx, root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.verbose(), app.colorScheme())
		}),
	)
	if err == nil {
		return types.ExitCodeSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitCodeFailure
}

// Execute runs ops with the process arguments and exits.
func Execute() {
	code := Run(context.Background(), NewApp(Dependencies{}), os.Args[1:])
	os.Exit(int(code))
}
