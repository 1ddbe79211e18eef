// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/opsrun/ops/internal/container"
	"github.com/opsrun/ops/internal/issue"
	"github.com/opsrun/ops/internal/runtime"
	"github.com/opsrun/ops/pkg/opsfile"
)

func issueOf(t *testing.T, err error) issue.Id {
	t.Helper()
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T: %v", err, err)
	}
	return ae.Issue
}

func TestPlanError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"not discovered", fmt.Errorf("%w in /src", opsfile.ErrPlanNotFound), issue.PlanNotFoundId},
		{"explicit file missing", &opsfile.ParseError{Path: "x.yaml", Err: fs.ErrNotExist}, issue.PlanNotFoundId},
		{"unreadable", &opsfile.ParseError{Path: "x.yaml", Err: fs.ErrPermission}, issue.PermissionDeniedId},
		{"invalid", &opsfile.ParseError{Path: "x.yaml", Err: errors.New("bad key")}, issue.PlanParseErrorId},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := planError(tt.err)
			if got := issueOf(t, err); got != tt.want {
				t.Errorf("issue = %d, want %d", got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("planError() should keep the cause in the chain")
			}
			if !strings.HasPrefix(err.Error(), "failed to load plan") {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}

func TestEngineError(t *testing.T) {
	t.Parallel()

	err := engineError(&container.EngineNotAvailableError{Engine: container.EngineTypeDocker})
	if got := issueOf(t, err); got != issue.ContainerEngineNotFoundId {
		t.Errorf("issue = %d, want %d", got, issue.ContainerEngineNotFoundId)
	}
	if !errors.Is(err, container.ErrNoEngine) {
		t.Error("engineError() should wrap ErrNoEngine")
	}

	if got := issueOf(t, engineError(errors.New("boom"))); got != 0 {
		t.Errorf("unclassified engine error got issue %d", got)
	}
}

func TestRunError(t *testing.T) {
	t.Parallel()

	t.Run("build", func(t *testing.T) {
		t.Parallel()
		err := runError(fmt.Errorf("mission 'ci': %w", &runtime.BuildError{Source: "ci"}))
		if got := issueOf(t, err); got != issue.ImageBuildFailedId {
			t.Errorf("issue = %d", got)
		}
		if !strings.HasPrefix(err.Error(), "failed to build image: ci:") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("launch", func(t *testing.T) {
		t.Parallel()
		err := runError(&runtime.LaunchSetupError{Image: "alpine", Err: errors.New("no such binary")})
		if got := issueOf(t, err); got != issue.LaunchFailedId {
			t.Errorf("issue = %d", got)
		}
	})

	t.Run("launch permission", func(t *testing.T) {
		t.Parallel()
		err := runError(&runtime.LaunchSetupError{Image: "alpine", Err: os.ErrPermission})
		if got := issueOf(t, err); got != issue.PermissionDeniedId {
			t.Errorf("issue = %d", got)
		}
	})

	t.Run("shell", func(t *testing.T) {
		t.Parallel()
		err := runError(opsfile.ErrShellNotConfigured)
		if got := issueOf(t, err); got != issue.ShellNotConfiguredId {
			t.Errorf("issue = %d", got)
		}
	})

	t.Run("other", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("boom")
		if err := runError(cause); err != cause {
			t.Errorf("runError() = %v, want the input unchanged", err)
		}
	})
}

func TestWithIssue(t *testing.T) {
	t.Parallel()

	plain := withIssue(errors.New("boom"), issue.ConfigLoadFailedId)
	if got := issueOf(t, plain); got != issue.ConfigLoadFailedId {
		t.Errorf("plain error issue = %d", got)
	}

	tagged := &issue.ActionableError{Operation: "load configuration", Issue: issue.PermissionDeniedId}
	if got := issueOf(t, withIssue(tagged, issue.ConfigLoadFailedId)); got != issue.PermissionDeniedId {
		t.Errorf("existing issue was replaced with %d", got)
	}

	untagged := &issue.ActionableError{Operation: "load configuration"}
	if got := issueOf(t, withIssue(untagged, issue.ConfigLoadFailedId)); got != issue.ConfigLoadFailedId {
		t.Errorf("untagged issue = %d", got)
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	t.Run("reported exit", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderError(&buf, &ExitError{Code: 3}, false, "auto")
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderError(&buf, errors.New("boom"), false, "auto")
		if got := buf.String(); !strings.Contains(got, "Error:") || !strings.Contains(got, "boom") {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("with catalog entry", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := planError(fmt.Errorf("%w in /src", opsfile.ErrPlanNotFound))
		renderError(&buf, err, false, "auto")
		out := buf.String()
		first, rest, _ := strings.Cut(out, "\n")
		if !strings.Contains(first, "no plan file found in /src") {
			t.Errorf("first line = %q", first)
		}
		if !strings.Contains(out, "--file") {
			t.Errorf("suggestion missing from output:\n%s", out)
		}
		if strings.TrimSpace(rest) == "" {
			t.Error("catalog entry was not rendered")
		}
	})
}
