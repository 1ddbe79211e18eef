// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load plan"},
			expected: "failed to load plan",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load plan", Resource: "Ops.yaml"},
			expected: "failed to load plan: Ops.yaml",
		},
		{
			name:     "full context",
			err:      &ActionableError{Operation: "build image", Resource: "build:./ci", Cause: errors.New("exit 1")},
			expected: "failed to build image: build:./ci: exit 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	cause := errors.New("specific error")
	wrapped := &ActionableError{Operation: "test", Cause: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("exit status 125")

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions",
			err: &ActionableError{
				Operation:   "load plan",
				Resource:    "Ops.yaml",
				Suggestions: []string{"Run 'ops validate'", "Check indentation"},
			},
			contains: []string{"failed to load plan: Ops.yaml", "• Run 'ops validate'", "• Check indentation"},
		},
		{
			name:     "no chain when quiet",
			err:      &ActionableError{Operation: "parse config", Cause: errors.New("syntax error")},
			contains: []string{"failed to parse config: syntax error"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested chain when verbose",
			err: &ActionableError{
				Operation: "run missions",
				Cause:     fmt.Errorf("mission 'lint': %w", sentinel),
			},
			verbose:  true,
			contains: []string{"Error chain:", "1. mission 'lint': exit status 125", "2. exit status 125"},
		},
		{
			name: "multi-error chain follows first branch",
			err: &ActionableError{
				Operation: "launch",
				Cause:     errors.Join(sentinel, errors.New("other")),
			},
			verbose:  true,
			contains: []string{"2. exit status 125"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("build image").
		WithResource("recipe").
		WithSuggestion("first").
		WithSuggestions("second", "third").
		WithIssue(ImageBuildFailedId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "build image" || ae.Resource != "recipe" {
		t.Errorf("unexpected context: %+v", ae)
	}
	if len(ae.Suggestions) != 3 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if ae.Issue != ImageBuildFailedId {
		t.Errorf("Issue = %d", ae.Issue)
	}
	if !errors.Is(ae, cause) {
		t.Error("cause should be reachable")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithResource("x")
	if ctx.Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := ctx.BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want untyped nil", err)
	}
}

func TestErrorContext_ReuseDoesNotShareSuggestions(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("op").WithSuggestion("a")
	first := ctx.Build()
	ctx.WithSuggestion("b")
	second := ctx.Build()

	if len(first.Suggestions) != 1 {
		t.Errorf("first build mutated: %v", first.Suggestions)
	}
	if len(second.Suggestions) != 2 {
		t.Errorf("second build = %v", second.Suggestions)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("nil error should stay nil")
	}

	err := WrapWithContext(errors.New("denied"), "open socket", "/var/run/docker.sock")
	if got := err.Error(); got != "failed to open socket: /var/run/docker.sock: denied" {
		t.Errorf("Error() = %q", got)
	}
}
