// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsrun/ops/pkg/opsfile"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the plan file without running anything",
		Long: `Load the plan, validate it against the schema and report script lint
warnings. Warnings never fail validation: the image decides how a script
is interpreted.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			plan, err := app.resolvePlan()
			if err != nil {
				return err
			}

			w := app.stdout
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), plan.FilePath)
			for _, m := range plan.Missions {
				fmt.Fprintf(w, "  %s %s\n", MissionStyle.Render(m.Name), SubtitleStyle.Render(m.Options.Image.String()))
			}
			if plan.Shell != nil {
				fmt.Fprintf(w, "  %s %s\n", MissionStyle.Render("(shell)"), SubtitleStyle.Render(plan.Shell.Options.Image.String()))
			}

			warnings := opsfile.Lint(plan)
			for _, warning := range warnings {
				fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("warning:"), warning)
			}
			if len(warnings) == 0 {
				fmt.Fprintln(w, SuccessStyle.Render("no warnings"))
			}
			return nil
		},
	}
}
