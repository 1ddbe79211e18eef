// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// PodmanEngine drives the podman CLI.
//
// On SELinux-enforcing hosts, user volumes and the working-directory mount
// get the shared :z label. The daemon socket and /etc/passwd, /etc/group are
// never relabeled. Rootless podman runs with --userns=keep-id when the host
// user is forwarded so that file ownership matches on the host.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a Podman engine using the podman binary on PATH.
// Its daemon socket is the rootless user service socket unless running as
// root.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	rootless := os.Geteuid() != 0
	socket := podmanSocket(rootless, os.Getenv("XDG_RUNTIME_DIR"), os.Getuid())
	return newPodmanEngine(isSELinuxEnforcing, rootless, append([]BaseCLIEngineOption{WithDaemonSocket(socket)}, opts...)...)
}

// podmanSocket returns the API socket of the podman service: the system
// socket for root, $XDG_RUNTIME_DIR/podman/podman.sock otherwise.
func podmanSocket(rootless bool, runtimeDir string, uid int) string {
	if !rootless {
		return RootPodmanSocket
	}
	if runtimeDir == "" {
		runtimeDir = filepath.Join("/run/user", strconv.Itoa(uid))
	}
	return filepath.Join(runtimeDir, "podman", "podman.sock")
}

func newPodmanEngine(selinux func() bool, rootless bool, opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")
	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypePodman)),
		WithVolumeFormatter(func(v string) string {
			if !selinux() {
				return v
			}
			return addSELinuxLabel(v)
		}),
		WithRunArgsTransformer(func(args []string, opts RunOptions) []string {
			if !rootless || opts.User == nil {
				return args
			}
			return slices.Insert(args, 1, "--userns=keep-id")
		}),
	}, opts...)

	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// Available reports whether podman answers.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	return e.RunCommandStatus(context.Background(), "version", "--format", "{{.Version}}") == nil
}

// Version returns the Podman version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get podman version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func isSELinuxEnforcing() bool {
	data, err := os.ReadFile("/sys/fs/selinux/enforce")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// addSELinuxLabel appends the z option to a host:container[:options] mount
// unless it already carries z or Z.
func addSELinuxLabel(volume string) string {
	parts := strings.Split(volume, ":")
	switch {
	case len(parts) < 2:
		return volume
	case len(parts) == 2:
		return volume + ":z"
	}
	for opt := range strings.SplitSeq(parts[len(parts)-1], ",") {
		if opt == "z" || opt == "Z" {
			return volume
		}
	}
	return volume + ",z"
}
