// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"sync"
	"testing"
)

type (
	// MockCommandRecorder records engine invocations and runs them as
	// TestHelperProcess, which behaves according to the recorder settings.
	MockCommandRecorder struct {
		mu          sync.Mutex
		invocations []MockInvocation

		// ExitCode is the exit code of the helper process.
		ExitCode int
		// Stdout is written to the helper's stdout.
		Stdout string
		// EchoStdin copies the helper's stdin to its stdout.
		EchoStdin bool
		// IgnoreStdin makes the helper exit without reading stdin.
		IgnoreStdin bool
		// ImageID is written to the file named by --iidfile.
		ImageID string
		// Kill makes the helper kill itself.
		Kill bool
	}

	// MockInvocation is a single recorded command.
	MockInvocation struct {
		Name string
		Args []string
	}
)

// ExecCommand returns an ExecCommandFunc for WithExecCommand.
func (m *MockCommandRecorder) ExecCommand(t *testing.T) ExecCommandFunc {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		m.mu.Lock()
		m.invocations = append(m.invocations, MockInvocation{Name: name, Args: slices.Clone(args)})
		m.mu.Unlock()

		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...) //nolint:gosec // test helper re-exec
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", m.ExitCode),
			"GO_HELPER_STDOUT=" + m.Stdout,
			"GO_HELPER_IMAGE_ID=" + m.ImageID,
		}
		if m.EchoStdin {
			cmd.Env = append(cmd.Env, "GO_HELPER_ECHO_STDIN=1")
		}
		if m.IgnoreStdin {
			cmd.Env = append(cmd.Env, "GO_HELPER_IGNORE_STDIN=1")
		}
		if m.Kill {
			cmd.Env = append(cmd.Env, "GO_HELPER_KILL=1")
		}
		return cmd
	}
}

// Invocations returns a copy of the recorded invocations.
func (m *MockCommandRecorder) Invocations() []MockInvocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.invocations)
}

// LastArgs returns the arguments of the most recent invocation.
func (m *MockCommandRecorder) LastArgs() []string {
	inv := m.Invocations()
	if len(inv) == 0 {
		return nil
	}
	return inv[len(inv)-1].Args
}

// TestHelperProcess is the fake engine binary. It does nothing unless
// started by a MockCommandRecorder.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if os.Getenv("GO_HELPER_KILL") == "1" {
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Kill()
		select {}
	}

	if id := os.Getenv("GO_HELPER_IMAGE_ID"); id != "" {
		args := os.Args
		for i := range len(args) - 1 {
			if args[i] == "--iidfile" {
				_ = os.WriteFile(args[i+1], []byte(id+"\n"), 0o600)
			}
		}
	}

	fmt.Fprint(os.Stdout, os.Getenv("GO_HELPER_STDOUT"))

	switch {
	case os.Getenv("GO_HELPER_ECHO_STDIN") == "1":
		_, _ = io.Copy(os.Stdout, os.Stdin)
	case os.Getenv("GO_HELPER_IGNORE_STDIN") == "1":
		_ = os.Stdin.Close()
	}

	exitCode := 0
	fmt.Sscanf(os.Getenv("GO_HELPER_EXIT_CODE"), "%d", &exitCode)
	os.Exit(exitCode)
}

func newMockEngine(t *testing.T, m *MockCommandRecorder, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	t.Helper()
	allOpts := append([]BaseCLIEngineOption{WithName("docker"), WithExecCommand(m.ExecCommand(t))}, opts...)
	return NewBaseCLIEngine("docker", allOpts...)
}
