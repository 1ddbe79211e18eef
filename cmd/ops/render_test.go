// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opsrun/ops/internal/runtime"
)

func TestShellJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"run", "--rm", "golang"}, "docker run --rm golang"},
		{[]string{"run", "hello world"}, "docker run 'hello world'"},
		{[]string{"build", "ci", "--iidfile", "<iidfile>"}, "docker build ci --iidfile '<iidfile>'"},
		{[]string{"run", ""}, "docker run ''"},
	}
	for _, tt := range tests {
		if got := shellJoin("docker", tt.args); got != tt.want {
			t.Errorf("shellJoin(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestRenderPlan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderPlan(&buf, "podman", []runtime.PlannedMission{
		{Name: "lint", Run: []string{"run", "--rm", "golang"}},
		{Name: "package", Build: []string{"build", "ci"}, Run: []string{"run", "--rm", "<built-image>"}},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"lint",
		"  podman run --rm golang",
		"",
		"package",
		"  podman build ci",
		"  podman run --rm '<built-image>'",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("renderPlan() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPlan_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderPlan(&buf, "docker", nil)
	if !strings.Contains(buf.String(), "No mission matches.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	outcome := &runtime.Outcome{
		Results: []runtime.MissionResult{
			{Name: "ok", Succeeded: true},
			{Name: "bad", Status: runtime.ExitStatus{Code: 2}},
		},
		Failed: []string{"bad"},
	}

	var buf bytes.Buffer
	if err := writeYAML(&buf, outcome); err != nil {
		t.Fatalf("writeYAML() error = %v", err)
	}
	want := `results:
  - name: ok
    status:
      code: 0
    succeeded: true
  - name: bad
    status:
      code: 2
    succeeded: false
failed:
  - bad
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("writeYAML() mismatch (-want +got):\n%s", diff)
	}
}
