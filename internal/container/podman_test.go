// SPDX-License-Identifier: MPL-2.0

package container

import (
	"os"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddSELinuxLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		volume string
		want   string
	}{
		{"/src:/src", "/src:/src:z"},
		{"/data:/data:ro", "/data:/data:ro,z"},
		{"/data:/data:ro,Z", "/data:/data:ro,Z"},
		{"/data:/data:z", "/data:/data:z"},
		{"named", "named"},
	}

	for _, tt := range tests {
		t.Run(tt.volume, func(t *testing.T) {
			t.Parallel()

			if got := addSELinuxLabel(tt.volume); got != tt.want {
				t.Errorf("addSELinuxLabel(%q) = %q, want %q", tt.volume, got, tt.want)
			}
		})
	}
}

func TestPodmanSocket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rootless   bool
		runtimeDir string
		want       string
	}{
		{"root", false, "/run/user/1000", RootPodmanSocket},
		{"rootless", true, "/run/user/1000", "/run/user/1000/podman/podman.sock"},
		{"rootless without runtime dir", true, "", "/run/user/1234/podman/podman.sock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := podmanSocket(tt.rootless, tt.runtimeDir, 1234); got != tt.want {
				t.Errorf("podmanSocket() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_DaemonSocket(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/4242")

	if got := NewDockerEngine().DaemonSocket(); got != DefaultDaemonSocket {
		t.Errorf("docker DaemonSocket() = %q, want %q", got, DefaultDaemonSocket)
	}

	want := podmanSocket(os.Geteuid() != 0, "/run/user/4242", os.Getuid())
	podman := NewPodmanEngine()
	if got := podman.DaemonSocket(); got != want {
		t.Errorf("podman DaemonSocket() = %q, want %q", got, want)
	}
	if got := podman.DaemonSocket(); got == DefaultDaemonSocket {
		t.Error("podman must not default to the docker socket")
	}

	if got := NewPodmanEngine(WithDaemonSocket("/custom.sock")).DaemonSocket(); got != "/custom.sock" {
		t.Errorf("WithDaemonSocket not applied: %q", got)
	}
}

func TestPodmanEngine_RunArgs(t *testing.T) {
	t.Parallel()

	opts := RunOptions{
		Remove:       true,
		WorkDir:      "/w",
		DaemonSocket: DefaultDaemonSocket,
		Volumes:      []string{"/tmp:/tmp"},
		User:         &Identity{UID: 1000, GID: 1000},
		Image:        "busybox",
	}

	t.Run("selinux and rootless", func(t *testing.T) {
		t.Parallel()

		engine := newPodmanEngine(func() bool { return true }, true)
		want := []string{
			"run", "--userns=keep-id", "--rm",
			"--volume", "/w:/w:z", "--workdir", "/w",
			"--volume", "/var/run/docker.sock:/var/run/docker.sock",
			"--volume", "/tmp:/tmp:z",
			"--user", "1000:1000",
			"--volume", "/etc/passwd:/etc/passwd",
			"--volume", "/etc/group:/etc/group",
			"busybox",
		}
		if diff := cmp.Diff(want, engine.RunArgs(opts)); diff != "" {
			t.Errorf("RunArgs() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no selinux, rootful", func(t *testing.T) {
		t.Parallel()

		engine := newPodmanEngine(func() bool { return false }, false)
		docker := NewBaseCLIEngine("docker")
		if diff := cmp.Diff(docker.RunArgs(opts), engine.RunArgs(opts)); diff != "" {
			t.Errorf("podman without SELinux should render docker args (-docker +podman):\n%s", diff)
		}
	})

	t.Run("keep-id only when forwarding the user", func(t *testing.T) {
		t.Parallel()

		engine := newPodmanEngine(func() bool { return false }, true)
		noUser := opts
		noUser.User = nil
		if slices.Contains(engine.RunArgs(noUser), "--userns=keep-id") {
			t.Error("--userns=keep-id added without a forwarded user")
		}
	})
}

func TestEngineNames(t *testing.T) {
	t.Parallel()

	if got := NewDockerEngine().Name(); got != "docker" {
		t.Errorf("DockerEngine.Name() = %q", got)
	}
	if got := NewPodmanEngine().Name(); got != "podman" {
		t.Errorf("PodmanEngine.Name() = %q", got)
	}
}
