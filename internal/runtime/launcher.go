// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/opsrun/ops/internal/container"
	"github.com/opsrun/ops/pkg/opsfile"
)

type (
	// Mode selects how a container is attached. It is either ScriptMode or
	// InteractiveMode.
	Mode interface {
		apply(run *container.RunOptions, tty bool)
	}

	// ScriptMode feeds Script to the container's standard input. The image's
	// entrypoint decides how it is interpreted.
	ScriptMode struct {
		Script string
	}

	// InteractiveMode attaches the launcher's stdin and runs Args as the
	// container command. A TTY is allocated when stdout is a terminal.
	InteractiveMode struct {
		Args []string
	}

	// Launcher starts one container per Launch call and reports its exit
	// status without judging it.
	Launcher struct {
		engine  container.Engine
		builder *InvocationBuilder
		stdin   io.Reader
		stdout  io.Writer
		stderr  io.Writer
	}

	// LauncherOption configures a Launcher.
	LauncherOption func(*Launcher)
)

func (m ScriptMode) apply(run *container.RunOptions, _ bool) {
	run.Interactive = true
	run.Input = []byte(m.Script)
}

func (m InteractiveMode) apply(run *container.RunOptions, tty bool) {
	run.Interactive = true
	run.TTY = tty
	run.Command = m.Args
}

// WithStdio sets the launcher's standard streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) LauncherOption {
	return func(l *Launcher) {
		l.stdin = stdin
		l.stdout = stdout
		l.stderr = stderr
	}
}

// NewLauncher creates a launcher using the process standard streams unless
// WithStdio is given.
func NewLauncher(engine container.Engine, builder *InvocationBuilder, opts ...LauncherOption) *Launcher {
	l := &Launcher{engine: engine, builder: builder, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch runs a container from image and waits for it. Errors are returned
// only when the container could not be set up or started; a failing
// container is reported through the returned status.
func (l *Launcher) Launch(ctx context.Context, opts opsfile.ContainerOptions, image string, mode Mode) (ExitStatus, error) {
	run, err := l.builder.RunOptions(opts, image)
	if err != nil {
		return ExitStatus{}, &LaunchSetupError{Image: image, Err: err}
	}
	mode.apply(&run, l.stdoutIsTerminal())
	if run.Input == nil {
		run.Stdin = l.stdin
	}
	run.Stdout = l.stdout
	run.Stderr = l.stderr

	result, err := l.engine.Run(ctx, run)
	if err != nil {
		return ExitStatus{}, &LaunchSetupError{Image: image, Err: err}
	}
	status := exitStatusFrom(result)
	slog.Debug("container exited", "image", image, "status", status.String())
	return status, nil
}

func (l *Launcher) stdoutIsTerminal() bool {
	f, ok := l.stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
