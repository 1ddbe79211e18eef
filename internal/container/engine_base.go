// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/opsrun/ops/pkg/types"
)

const (
	passwdFile = "/etc/passwd"
	groupFile  = "/etc/group"
)

type (
	// ExecCommandFunc creates an exec.Cmd. Tests inject a mock.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// VolumeFormatFunc rewrites a user or working-directory bind mount.
	// Podman uses it to add SELinux labels.
	VolumeFormatFunc func(volume string) string

	// RunArgsTransformer modifies run arguments after they are rendered.
	RunArgsTransformer func(args []string, opts RunOptions) []string

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine implements building, running and argument rendering for
	// engines driven through a docker-compatible CLI.
	BaseCLIEngine struct {
		name               string
		binaryPath         string
		execCommand        ExecCommandFunc
		daemonSocket       string
		volumeFormatter    VolumeFormatFunc
		runArgsTransformer RunArgsTransformer
	}
)

// WithName sets the engine name used in logs and errors.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithBinaryPath overrides the engine binary found on PATH.
func WithBinaryPath(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.binaryPath = path
	}
}

// WithExecCommand sets the function used to create commands.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithDaemonSocket sets the socket reported by DaemonSocket.
func WithDaemonSocket(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.daemonSocket = path
	}
}

// WithVolumeFormatter sets the bind mount formatter.
func WithVolumeFormatter(fn VolumeFormatFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.volumeFormatter = fn
	}
}

// WithRunArgsTransformer sets a hook applied to rendered run arguments.
func WithRunArgsTransformer(fn RunArgsTransformer) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.runArgsTransformer = fn
	}
}

// NewBaseCLIEngine creates a BaseCLIEngine for the binary at binaryPath.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:         binaryPath,
		execCommand:        exec.CommandContext,
		daemonSocket:       DefaultDaemonSocket,
		volumeFormatter:    func(v string) string { return v },
		runArgsTransformer: func(args []string, _ RunOptions) []string { return args },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// DaemonSocket returns the engine's API socket.
func (e *BaseCLIEngine) DaemonSocket() string {
	return e.daemonSocket
}

// BinaryPath returns the path to the engine binary, or "" if it was not found.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// BuildArgs renders: build <context> --iidfile <path> [-f <dockerfile>].
func (e *BaseCLIEngine) BuildArgs(opts BuildOptions) []string {
	args := []string{"build", opts.ContextDir}
	if opts.IIDFile != "" {
		args = append(args, "--iidfile", opts.IIDFile)
	}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	return args
}

// RunArgs renders the run command line. Flag order is fixed: removal, working
// directory, daemon socket, user volumes, environment, user identity,
// interactivity, then the image and its command.
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}

	if opts.WorkDir != "" {
		args = append(args, "--volume", e.volumeFormatter(opts.WorkDir+":"+opts.WorkDir), "--workdir", opts.WorkDir)
	}

	if opts.DaemonSocket != "" {
		args = append(args, "--volume", opts.DaemonSocket+":"+opts.DaemonSocket)
	}

	for _, v := range opts.Volumes {
		args = append(args, "--volume", e.volumeFormatter(v))
	}

	for _, env := range opts.Env {
		args = append(args, "--env", env)
	}

	if u := opts.User; u != nil {
		args = append(args,
			"--user", u.String(),
			"--volume", passwdFile+":"+passwdFile,
			"--volume", groupFile+":"+groupFile,
		)
		for _, g := range u.Groups {
			args = append(args, "--group-add", strconv.Itoa(g))
		}
	}

	if opts.Interactive {
		args = append(args, "--interactive")
	}

	if opts.TTY {
		args = append(args, "--tty")
	}

	args = append(args, opts.Image)
	args = append(args, opts.Command...)

	return e.runArgsTransformer(args, opts)
}

// Build runs the engine's build command.
func (e *BaseCLIEngine) Build(ctx context.Context, opts BuildOptions) (*RunResult, error) {
	cmd := e.CreateCommand(ctx, e.BuildArgs(opts)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	return e.execute(cmd, opts.Input)
}

// Run runs a container and waits for it to exit.
func (e *BaseCLIEngine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	cmd := e.CreateCommand(ctx, e.RunArgs(opts)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if opts.Input == nil {
		cmd.Stdin = opts.Stdin
	}
	return e.execute(cmd, opts.Input)
}

// CreateCommand creates an engine command and logs it at debug level.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	slog.Debug("engine command", "engine", e.name, "binary", e.binaryPath, "args", args)
	return e.execCommand(ctx, e.binaryPath, args...)
}

// RunCommandWithOutput runs an engine command and returns its stdout.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return out.String(), nil
}

// RunCommandStatus runs an engine command, discarding its output.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	if err := e.CreateCommand(ctx, args...).Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return nil
}

// execute starts cmd, feeds input to its stdin from a separate goroutine
// when input is non-nil, and waits for the process. Only failures to set up
// or start the process are returned as errors.
func (e *BaseCLIEngine) execute(cmd *exec.Cmd, input []byte) (*RunResult, error) {
	var g errgroup.Group

	if input != nil {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStdinUnavailable, err)
		}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrStartFailed, e.name, err)
		}
		g.Go(func() error {
			_, err := stdin.Write(input)
			if closeErr := stdin.Close(); err == nil {
				err = closeErr
			}
			return err
		})
	} else if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStartFailed, e.name, err)
	}

	waitErr := cmd.Wait()
	if writeErr := g.Wait(); writeErr != nil && !isClosedPipe(writeErr) {
		slog.Warn("writing container input failed", "engine", e.name, "error", writeErr)
	}

	return exitResult(waitErr)
}

func exitResult(waitErr error) (*RunResult, error) {
	if waitErr == nil {
		return &RunResult{ExitCode: types.ExitCodeSuccess}, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return nil, fmt.Errorf("waiting for container engine: %w", waitErr)
	}
	code := exitErr.ExitCode()
	if code < 0 {
		return &RunResult{ExitCode: types.ExitCodeSignaled, Signaled: true, Detail: exitErr.String()}, nil
	}
	return &RunResult{ExitCode: types.ExitCode(code)}, nil
}

// isClosedPipe reports whether err means the child stopped reading its
// standard input. Such errors never override the child's exit status.
func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, fs.ErrClosed)
}
