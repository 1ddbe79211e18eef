// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"os"

	"github.com/opsrun/ops/internal/container"
	"github.com/opsrun/ops/pkg/opsfile"
)

type (
	// InvocationBuilder maps plan container options to engine run options.
	// Every container gets the working directory mounted at the same path
	// and the daemon socket mounted in.
	InvocationBuilder struct {
		// WorkDir is mounted and used as the container working directory.
		WorkDir string
		// DaemonSocket is mounted into every container.
		DaemonSocket string
		// Identity returns the host identity used when the user is forwarded.
		Identity func() (*container.Identity, error)
	}
)

// NewInvocationBuilder returns a builder for the current directory, using
// socket as the daemon socket (the Docker socket when empty).
func NewInvocationBuilder(socket string) (*InvocationBuilder, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	if socket == "" {
		socket = container.DefaultDaemonSocket
	}
	return &InvocationBuilder{WorkDir: wd, DaemonSocket: socket, Identity: container.HostIdentity}, nil
}

// RunOptions returns the run options for a container started from image.
// Volumes and environment entries keep their plan order. The result always
// removes the container on exit; stdio and interactivity are left to the
// caller.
func (b *InvocationBuilder) RunOptions(opts opsfile.ContainerOptions, image string) (container.RunOptions, error) {
	run := container.RunOptions{
		Remove:       true,
		WorkDir:      b.WorkDir,
		DaemonSocket: b.DaemonSocket,
		Image:        image,
	}
	for _, v := range opts.Volumes {
		run.Volumes = append(run.Volumes, v.String())
	}
	for _, e := range opts.Environment {
		run.Env = append(run.Env, e.String())
	}
	if opts.ForwardUser {
		id, err := b.Identity()
		if err != nil {
			return container.RunOptions{}, err
		}
		run.User = id
	}
	return run, nil
}

// Args renders the full run command line for the container, as engine
// would receive it.
func (b *InvocationBuilder) Args(engine container.Engine, opts opsfile.ContainerOptions, image string, mode Mode) ([]string, error) {
	run, err := b.RunOptions(opts, image)
	if err != nil {
		return nil, err
	}
	mode.apply(&run, false)
	return engine.RunArgs(run), nil
}
