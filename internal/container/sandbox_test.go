// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectSandboxFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		flatpakInfo bool
		snapName    string
		want        SandboxType
	}{
		{name: "host", want: SandboxNone},
		{name: "flatpak", flatpakInfo: true, want: SandboxFlatpak},
		{name: "snap", snapName: "ops", want: SandboxSnap},
		{name: "flatpak wins", flatpakInfo: true, snapName: "ops", want: SandboxFlatpak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			getenv := func(key string) string {
				if key == "SNAP_NAME" {
					return tt.snapName
				}
				return ""
			}
			stat := func(path string) error {
				if tt.flatpakInfo && path == flatpakInfoFile {
					return nil
				}
				return fs.ErrNotExist
			}
			if got := detectSandboxFrom(getenv, stat); got != tt.want {
				t.Errorf("detectSandboxFrom() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSandboxType_SpawnPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sandbox SandboxType
		want    []string
	}{
		{SandboxNone, nil},
		{SandboxFlatpak, []string{"flatpak-spawn", "--host"}},
		{SandboxSnap, []string{"snap", "run", "--shell"}},
		{"unknown", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.sandbox.SpawnPrefix()); diff != "" {
			t.Errorf("%q.SpawnPrefix() mismatch (-want +got):\n%s", tt.sandbox, diff)
		}
	}
}

func TestNewSandboxAwareEngine_OutsideSandbox(t *testing.T) {
	t.Parallel()

	engine := NewDockerEngine()
	if got := NewSandboxAwareEngine(engine, SandboxNone); got != Engine(engine) {
		t.Errorf("NewSandboxAwareEngine(SandboxNone) = %p, want the engine itself", got)
	}
}

func TestNewSandboxAwareEngine_RunsOnHost(t *testing.T) {
	t.Parallel()

	rec := &MockCommandRecorder{EchoStdin: true}
	inner := NewDockerEngine(WithBinaryPath(""), WithExecCommand(rec.ExecCommand(t)))
	engine := NewSandboxAwareEngine(inner, SandboxFlatpak)

	var stdout bytes.Buffer
	result, err := engine.Run(context.Background(), RunOptions{
		Remove:      true,
		Interactive: true,
		Image:       "busybox",
		Input:       []byte("echo hi\n"),
		Stdout:      &stdout,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success() || stdout.String() != "echo hi\n" {
		t.Errorf("Run() = %v, stdout %q", result, stdout.String())
	}

	want := []MockInvocation{{
		Name: "flatpak-spawn",
		Args: []string{"--host", "docker", "run", "--rm", "--interactive", "busybox"},
	}}
	if diff := cmp.Diff(want, rec.Invocations()); diff != "" {
		t.Errorf("invocations mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"run", "busybox"}, engine.RunArgs(RunOptions{Image: "busybox"})); diff != "" {
		t.Errorf("RunArgs() mismatch (-want +got):\n%s", diff)
	}
	if inner.BinaryPath() != "" {
		t.Errorf("wrapped engine was modified: binary %q", inner.BinaryPath())
	}
}

func TestNewSandboxAwareEngine_PodmanInSnap(t *testing.T) {
	t.Parallel()

	rec := &MockCommandRecorder{Stdout: "5.2.1\n"}
	inner := NewPodmanEngine(WithBinaryPath("/usr/bin/podman"), WithExecCommand(rec.ExecCommand(t)))
	engine := NewSandboxAwareEngine(inner, SandboxSnap)

	if _, ok := engine.(*PodmanEngine); !ok {
		t.Fatalf("NewSandboxAwareEngine() = %T, want *PodmanEngine", engine)
	}
	if engine.DaemonSocket() != inner.DaemonSocket() {
		t.Errorf("DaemonSocket() = %q, want %q", engine.DaemonSocket(), inner.DaemonSocket())
	}

	version, err := engine.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version != "5.2.1" {
		t.Errorf("Version() = %q", version)
	}
	want := []string{"run", "--shell", "/usr/bin/podman", "version", "--format", "{{.Version}}"}
	if diff := cmp.Diff(want, rec.LastArgs()); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if name := rec.Invocations()[0].Name; name != "snap" {
		t.Errorf("spawned %q, want snap", name)
	}
}

func TestNewSandboxAwareEngine_BuildReportsExit(t *testing.T) {
	t.Parallel()

	rec := &MockCommandRecorder{ExitCode: 3}
	engine := NewSandboxAwareEngine(NewDockerEngine(WithExecCommand(rec.ExecCommand(t))), SandboxFlatpak)

	result, err := engine.Build(context.Background(), BuildOptions{ContextDir: "."})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.Success() || result.ExitCode != 3 {
		t.Errorf("Build() exit = %d, want 3", result.ExitCode)
	}
	if rec.Invocations()[0].Name != "flatpak-spawn" {
		t.Errorf("build was not spawned on the host: %+v", rec.Invocations())
	}
}
