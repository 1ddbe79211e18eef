// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"

	"github.com/opsrun/ops/internal/container"
)

// ParallelEnv overrides the number of concurrent container operations
// allowed in tests.
const ParallelEnv = "OPS_TEST_CONTAINER_PARALLEL"

// ContainerSemaphore returns a process-wide channel limiting concurrent
// container operations in tests. Send to acquire a slot, receive to
// release it:
//
//	sem := testutil.ContainerSemaphore()
//	sem <- struct{}{}
//	defer func() { <-sem }()
var ContainerSemaphore = sync.OnceValue(func() chan struct{} {
	return make(chan struct{}, containerParallelism())
})

func containerParallelism() int {
	if v := os.Getenv(ParallelEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return min(runtime.GOMAXPROCS(0), 2)
}

// AcquireContainerSlot blocks until a container slot is free and releases
// it when t finishes.
func AcquireContainerSlot(t testing.TB) {
	t.Helper()
	sem := ContainerSemaphore()
	sem <- struct{}{}
	t.Cleanup(func() { <-sem })
}

// RequireDocker skips t unless a Docker daemon answers both the docker CLI
// and the testcontainers provider lookup. Short mode always skips.
func RequireDocker(t testing.TB) *container.DockerEngine {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	engine := container.NewDockerEngine()
	if !engine.Available() {
		t.Skip("skipping docker integration test: docker not available")
	}
	if !dockerProviderAvailable() {
		t.Skip("skipping docker integration test: testcontainers provider not available")
	}
	return engine
}

// dockerProviderAvailable reports whether testcontainers can reach Docker.
// The provider lookup may panic on hosts without a daemon.
func dockerProviderAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}
