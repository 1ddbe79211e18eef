// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/opsrun/ops/pkg/types"
)

const (
	// EngineTypePodman selects the podman CLI.
	EngineTypePodman EngineType = "podman"
	// EngineTypeDocker selects the docker CLI.
	EngineTypeDocker EngineType = "docker"

	// DefaultDaemonSocket is the Docker daemon socket.
	DefaultDaemonSocket = "/var/run/docker.sock"
	// RootPodmanSocket is the API socket of the system podman service.
	RootPodmanSocket = "/run/podman/podman.sock"

	// StdinDockerfile tells the build command to read the Dockerfile from stdin.
	StdinDockerfile = "-"
)

var (
	// ErrNoEngine is the sentinel error wrapped by EngineNotAvailableError.
	ErrNoEngine = errors.New("no container engine available")

	// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
	ErrInvalidEngineType = errors.New("invalid container engine type")

	// ErrStdinUnavailable is returned when the child's standard input cannot be
	// attached.
	ErrStdinUnavailable = errors.New("cannot attach to container standard input")

	// ErrStartFailed is returned when the engine process cannot be started.
	ErrStartFailed = errors.New("failed to start container engine")
)

type (
	// Engine is a container engine reachable through its CLI.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available reports whether the engine can be used on this host.
		Available() bool
		// DaemonSocket returns the engine's API socket, mounted into
		// containers when no socket is configured.
		DaemonSocket() string
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// Build runs an image build. A non-zero exit is reported in the
		// result, not as an error.
		Build(ctx context.Context, opts BuildOptions) (*RunResult, error)
		// Run runs a container to completion. A non-zero exit is reported in
		// the result, not as an error.
		Run(ctx context.Context, opts RunOptions) (*RunResult, error)
		// BuildArgs renders the build command line without running it.
		BuildArgs(opts BuildOptions) []string
		// RunArgs renders the run command line without running it.
		RunArgs(opts RunOptions) []string
	}

	// EngineType identifies the container engine type.
	EngineType string

	// InvalidEngineTypeError is returned for an unknown EngineType.
	InvalidEngineTypeError struct {
		Value EngineType
	}

	// EngineNotAvailableError is returned when neither the preferred engine
	// nor its fallback can be used.
	EngineNotAvailableError struct {
		Engine EngineType
	}

	// BuildOptions describes an image build.
	BuildOptions struct {
		// ContextDir is the build context directory.
		ContextDir string
		// Dockerfile is passed as -f when set. StdinDockerfile reads it from Input.
		Dockerfile string
		// IIDFile receives the built image ID.
		IIDFile string
		// Input is written to the build's standard input.
		Input []byte
		Stdout io.Writer
		Stderr io.Writer
	}

	// RunOptions describes a container run. Flags are rendered in the order
	// the fields are listed.
	RunOptions struct {
		// Remove deletes the container on exit.
		Remove bool
		// WorkDir is bind-mounted at the same path and used as working directory.
		WorkDir string
		// DaemonSocket is bind-mounted at the same path when set.
		DaemonSocket string
		// Volumes are "host:container[:opts]" bind mounts, passed verbatim.
		Volumes []string
		// Env entries are "KEY=VALUE" strings, passed verbatim.
		Env []string
		// User runs the container as a host identity when set.
		User *Identity
		Interactive bool
		TTY         bool
		Image       string
		// Command is appended after the image.
		Command []string

		// Stdin is connected to the child when Input is nil.
		Stdin io.Reader
		// Input is written to the child's standard input and then closed.
		Input  []byte
		Stdout io.Writer
		Stderr io.Writer
	}

	// RunResult is the exit status of an engine process.
	RunResult struct {
		// ExitCode is the process exit code, or types.ExitCodeSignaled.
		ExitCode types.ExitCode
		// Signaled is set when the process was terminated by a signal.
		Signaled bool
		// Detail is the process state as reported by the OS, e.g. "signal: killed".
		Detail string
	}
)

// String returns the engine type name.
func (t EngineType) String() string { return string(t) }

// Validate returns an error if the type is neither docker nor podman.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeDocker, EngineTypePodman:
		return nil
	default:
		return &InvalidEngineTypeError{Value: t}
	}
}

// Error implements the error interface.
func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid container engine type %q (valid: docker, podman)", e.Value)
}

// Unwrap returns ErrInvalidEngineType.
func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// Error implements the error interface.
func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available, and neither is its fallback", e.Engine)
}

// Unwrap returns ErrNoEngine.
func (e *EngineNotAvailableError) Unwrap() error { return ErrNoEngine }

// Success reports whether the process exited with status zero.
func (r *RunResult) Success() bool {
	return !r.Signaled && r.ExitCode.IsSuccess()
}

// String describes the status for log and error messages.
func (r *RunResult) String() string {
	if r.Detail != "" {
		return r.Detail
	}
	return fmt.Sprintf("exit status %d", r.ExitCode)
}

// NewEngine returns the preferred engine, or the other one when the
// preferred engine is not available.
func NewEngine(preferred EngineType) (Engine, error) {
	first, err := ForType(preferred)
	if err != nil {
		return nil, err
	}
	other := EngineTypePodman
	if preferred == EngineTypePodman {
		other = EngineTypeDocker
	}
	second, _ := ForType(other)
	return pickEngine(preferred, []Engine{first, second})
}

// ForType returns the engine for t without checking that it is available.
// Rendering command lines does not need a running engine. Inside a Flatpak
// or Snap sandbox the engine runs on the host.
func ForType(t EngineType) (Engine, error) {
	switch t {
	case EngineTypeDocker:
		return NewSandboxAwareEngine(NewDockerEngine(), DetectSandbox()), nil
	case EngineTypePodman:
		return NewSandboxAwareEngine(NewPodmanEngine(), DetectSandbox()), nil
	default:
		return nil, &InvalidEngineTypeError{Value: t}
	}
}

func pickEngine(preferred EngineType, candidates []Engine) (Engine, error) {
	for _, e := range candidates {
		if e.Available() {
			return e, nil
		}
	}
	return nil, &EngineNotAvailableError{Engine: preferred}
}
