// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/opsrun/ops/internal/container"
	"github.com/opsrun/ops/internal/issue"
	"github.com/opsrun/ops/internal/runtime"
	"github.com/opsrun/ops/pkg/opsfile"
)

// withIssue attaches a catalog entry to err. ActionableErrors keep their
// own context; anything else is wrapped.
func withIssue(err error, id issue.Id) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		if ae.Issue == 0 {
			ae.Issue = id
		}
		return err
	}
	return &issue.ActionableError{Operation: "run ops", Issue: id, Cause: err}
}

func planError(err error) error {
	ctx := issue.NewErrorContext().WithOperation("load plan").Wrap(err)

	var parseErr *opsfile.ParseError
	switch {
	case errors.Is(err, opsfile.ErrPlanNotFound), errors.Is(err, os.ErrNotExist):
		ctx.WithIssue(issue.PlanNotFoundId).
			WithSuggestion("Run ops from the directory that holds Ops.yaml, or pass --file")
	case errors.Is(err, os.ErrPermission):
		ctx.WithIssue(issue.PermissionDeniedId)
	case errors.As(err, &parseErr):
		ctx.WithIssue(issue.PlanParseErrorId)
	}
	return ctx.BuildError()
}

func engineError(err error) error {
	ctx := issue.NewErrorContext().WithOperation("select container engine").Wrap(err)
	if errors.Is(err, container.ErrNoEngine) {
		ctx.WithIssue(issue.ContainerEngineNotFoundId).
			WithSuggestion("Check that 'docker version' or 'podman version' succeeds")
	}
	return ctx.BuildError()
}

// runError classifies an error returned by the executor or shell launcher.
func runError(err error) error {
	var buildErr *runtime.BuildError
	var launchErr *runtime.LaunchSetupError

	switch {
	case errors.As(err, &buildErr):
		return issue.NewErrorContext().
			WithOperation("build image").
			WithResource(buildErr.Source).
			WithIssue(issue.ImageBuildFailedId).
			Wrap(err).
			BuildError()
	case errors.As(err, &launchErr):
		ctx := issue.NewErrorContext().
			WithOperation("launch container").
			WithResource(launchErr.Image).
			WithIssue(issue.LaunchFailedId).
			Wrap(err)
		if errors.Is(err, os.ErrPermission) {
			ctx.WithIssue(issue.PermissionDeniedId)
		}
		return ctx.BuildError()
	case errors.Is(err, opsfile.ErrShellNotConfigured):
		return issue.NewErrorContext().
			WithOperation("open shell").
			WithIssue(issue.ShellNotConfiguredId).
			WithSuggestion("Add a 'shell' entry to the plan").
			Wrap(err).
			BuildError()
	default:
		return err
	}
}

// renderError prints err for the operator, followed by the catalog entry
// linked to it. Errors that were already reported print nothing.
func renderError(w io.Writer, err error, verbose bool, style string) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+ae.Format(verbose))
	} else {
		fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+err.Error())
	}

	entry := issue.For(err)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(style)
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issue", entry.Id(), "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}
