// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/opsrun/ops/internal/issue"
	"github.com/opsrun/ops/internal/runtime"
	"github.com/opsrun/ops/pkg/opsfile"
	"github.com/opsrun/ops/pkg/types"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

type executeOptions struct {
	dryRun bool
	output string
}

func newExecuteCommand(app *App) *cobra.Command {
	opts := &executeOptions{}

	cmd := &cobra.Command{
		Use:   "execute [pattern]",
		Short: "Run the plan's missions",
		Long: `Run every mission whose name contains pattern, one after the other.

A mission that exits non-zero is reported and the remaining missions still
run. A failed image build or a container that cannot be started stops the
run immediately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			if opts.output != outputText && opts.output != outputYAML {
				return fmt.Errorf("invalid --output %q (valid: text, yaml)", opts.output)
			}
			if opts.dryRun {
				return app.planMissions(pattern, opts.output)
			}
			return app.executeMissions(cmd, pattern, opts.output)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the engine commands without running them")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "output format: text or yaml")
	return cmd
}

func (a *App) executeMissions(cmd *cobra.Command, pattern, output string) error {
	plan, err := a.loadPlan()
	if err != nil {
		return err
	}
	svc, err := a.services(serviceOptions{requireAvailable: true, structuredStdout: output == outputYAML})
	if err != nil {
		return err
	}

	selected := runtime.Select(plan.Missions, pattern)
	if len(selected) == 0 {
		slog.Warn("no mission matches", "pattern", pattern, "missions", plan.MissionNames())
	}

	executor := runtime.NewExecutor(svc.resolver, svc.launcher, &progress{w: a.stderr})
	outcome, err := executor.ExecuteAll(cmd.Context(), plan.Missions, pattern)
	if output == outputYAML {
		if encErr := writeYAML(a.stdout, outcome); encErr != nil {
			return encErr
		}
	}
	if err != nil {
		return runError(err)
	}

	if !outcome.Success() {
		fmt.Fprintln(a.stderr, ErrorStyle.Render(fmt.Sprintf("Some missions have failed: %v", outcome.Failed)))
		if a.verbose() {
			if rendered, rerr := issue.Get(issue.MissionsFailedId).Render(a.colorScheme()); rerr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
		return &ExitError{Code: types.ExitCodeFailure}
	}
	slog.Debug("all missions succeeded", "count", len(outcome.Results))
	return nil
}

func (a *App) planMissions(pattern, output string) error {
	plan, err := a.loadPlan()
	if err != nil {
		return err
	}
	svc, err := a.services(serviceOptions{})
	if err != nil {
		return err
	}

	executor := runtime.NewExecutor(svc.resolver, svc.launcher, nil)
	planned, err := executor.Plan(plan.Missions, pattern)
	if err != nil {
		return runError(err)
	}
	if output == outputYAML {
		return writeYAML(a.stdout, planned)
	}
	renderPlan(a.stdout, svc.engine.Name(), planned)
	return nil
}

// progress reports mission boundaries on stderr so that container output
// on stdout stays clean.
type progress struct {
	w io.Writer
}

func (p *progress) MissionStarted(m *opsfile.Mission) {
	fmt.Fprintln(p.w, TitleStyle.Render(fmt.Sprintf("Launching '%s'", m.Name)))
}

func (p *progress) MissionFinished(m *opsfile.Mission, result runtime.MissionResult) {
	if result.Succeeded {
		slog.Debug("mission succeeded", "mission", m.Name)
		return
	}
	fmt.Fprintln(p.w, ErrorStyle.Render(fmt.Sprintf("Mission '%s' failed with %s", m.Name, result.Status)))
}
