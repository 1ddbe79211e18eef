// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opsrun/ops/internal/runtime"
	"github.com/opsrun/ops/pkg/types"
)

func newShellCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell [args...]",
		Short: "Open the plan's interactive shell container",
		Long: `Start the container described by the plan's 'shell' entry with the
terminal attached. Arguments replace the image's default command. Flags
after the first argument are passed to the container.

ops exits with the container's exit code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.loadPlan()
			if err != nil {
				return err
			}
			shell, err := plan.RequireShell()
			if err != nil {
				return runError(err)
			}
			svc, err := app.services(serviceOptions{requireAvailable: true})
			if err != nil {
				return err
			}

			status, err := runtime.NewShellLauncher(svc.resolver, svc.launcher).LaunchShell(cmd.Context(), shell, args)
			if err != nil {
				return runError(err)
			}
			if status.Success() {
				return nil
			}
			if status.Signaled {
				return &ExitError{Code: types.ExitCodeFailure}
			}
			return &ExitError{Code: status.Code.Process()}
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
