// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

const (
	// SandboxNone means the process runs directly on the host.
	SandboxNone SandboxType = ""
	// SandboxFlatpak means the process runs inside a Flatpak sandbox.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap means the process runs inside a Snap sandbox.
	SandboxSnap SandboxType = "snap"

	flatpakInfoFile = "/.flatpak-info"
)

// SandboxType identifies the application sandbox ops runs in, if any.
type SandboxType string

// detectOnce caches sandbox detection for the lifetime of the process.
// detectSandboxFrom must not panic: sync.OnceValue re-panics on every call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, func(path string) error {
		_, err := os.Stat(path)
		return err
	})
})

// DetectSandbox returns the sandbox the current process runs in. Flatpak is
// recognized by /.flatpak-info, Snap by the SNAP_NAME variable.
func DetectSandbox() SandboxType {
	return detectOnce()
}

func detectSandboxFrom(getenv func(string) string, stat func(string) error) SandboxType {
	if stat(flatpakInfoFile) == nil {
		return SandboxFlatpak
	}
	if getenv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

// SpawnPrefix returns the command that runs a program on the host from
// inside the sandbox, or nil outside one.
func (s SandboxType) SpawnPrefix() []string {
	switch s {
	case SandboxFlatpak:
		return []string{"flatpak-spawn", "--host"}
	case SandboxSnap:
		return []string{"snap", "run", "--shell"}
	default:
		return nil
	}
}

// NewSandboxAwareEngine returns engine unchanged outside a sandbox. Inside
// one, the returned engine runs every engine command on the host through the
// sandbox's spawn command, so that bind-mounted paths resolve on the host
// where the engine runs. Rendered command lines are not affected.
func NewSandboxAwareEngine(engine Engine, sandbox SandboxType) Engine {
	if sandbox.SpawnPrefix() == nil {
		return engine
	}
	switch e := engine.(type) {
	case *DockerEngine:
		return &DockerEngine{BaseCLIEngine: e.onHost(sandbox)}
	case *PodmanEngine:
		return &PodmanEngine{BaseCLIEngine: e.onHost(sandbox)}
	default:
		return engine
	}
}

// onHost returns a copy of e whose commands are spawned on the host. The
// engine binary is looked up on the host's PATH when the sandbox has none.
func (e *BaseCLIEngine) onHost(sandbox SandboxType) *BaseCLIEngine {
	host := *e
	if host.binaryPath == "" {
		host.binaryPath = host.name
	}
	prefix := sandbox.SpawnPrefix()
	next := e.execCommand
	host.execCommand = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		args := make([]string, 0, len(prefix)+len(arg))
		args = append(args, prefix[1:]...)
		args = append(args, name)
		args = append(args, arg...)
		return next(ctx, prefix[0], args...)
	}
	slog.Debug("running container engine on the host", "engine", host.name, "sandbox", string(sandbox))
	return &host
}
