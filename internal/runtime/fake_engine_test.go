// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"

	"github.com/opsrun/ops/internal/container"
	"github.com/opsrun/ops/pkg/opsfile"
	"github.com/opsrun/ops/pkg/types"
)

// fakeEngine records builds and runs instead of starting processes. Argument
// rendering is the real docker one.
type fakeEngine struct {
	*container.BaseCLIEngine

	mu     sync.Mutex
	calls  []string
	builds []container.BuildOptions
	runs   []container.RunOptions

	// imageID is written to the iid file of successful builds.
	imageID string
	// buildCode is the exit code of every build.
	buildCode types.ExitCode
	// buildErr is returned by every build.
	buildErr error
	// runCodes maps a mission script (or the image, for interactive runs) to
	// its exit code.
	runCodes map[string]types.ExitCode
	// runErr is returned by every run.
	runErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		BaseCLIEngine: container.NewBaseCLIEngine("docker", container.WithName("docker")),
		imageID:       "sha256:0123456789ab",
		runCodes:      map[string]types.ExitCode{},
	}
}

func (f *fakeEngine) Available() bool { return true }

func (f *fakeEngine) Version(context.Context) (string, error) { return "fake", nil }

func (f *fakeEngine) Build(_ context.Context, opts container.BuildOptions) (*container.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "build")
	f.builds = append(f.builds, opts)
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	if f.buildCode != 0 {
		return &container.RunResult{ExitCode: f.buildCode}, nil
	}
	if err := os.WriteFile(opts.IIDFile, []byte(f.imageID+"\n"), 0o600); err != nil {
		return nil, err
	}
	return &container.RunResult{}, nil
}

func (f *fakeEngine) Run(_ context.Context, opts container.RunOptions) (*container.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "run")
	f.runs = append(f.runs, opts)
	if f.runErr != nil {
		return nil, f.runErr
	}
	key := opts.Image
	if opts.Input != nil {
		key = string(opts.Input)
	}
	if opts.Stdout != nil {
		_, _ = opts.Stdout.Write(bytes.ToUpper(opts.Input))
	}
	return &container.RunResult{ExitCode: f.runCodes[key]}, nil
}

func (f *fakeEngine) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

var errIdentity = errors.New("no identity")

func testBuilder() *InvocationBuilder {
	return &InvocationBuilder{
		WorkDir:      "/src/project",
		DaemonSocket: container.DefaultDaemonSocket,
		Identity: func() (*container.Identity, error) {
			return &container.Identity{UID: 1000, GID: 1000, Groups: []int{27}}, nil
		},
	}
}

func mission(name, script string, image opsfile.ImageSpec) *opsfile.Mission {
	return &opsfile.Mission{Name: name, Script: script, Options: opsfile.ContainerOptions{Image: image}}
}
