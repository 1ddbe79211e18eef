// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"

	"github.com/opsrun/ops/internal/container"
	"github.com/opsrun/ops/pkg/types"
)

// ExitStatus is the uninterpreted exit status of a container process.
type ExitStatus struct {
	Code types.ExitCode `yaml:"code"`
	// Signaled is set when the process was terminated by a signal; Code is
	// then types.ExitCodeSignaled.
	Signaled bool   `yaml:"signaled,omitempty"`
	Detail   string `yaml:"detail,omitempty"`
}

func exitStatusFrom(r *container.RunResult) ExitStatus {
	return ExitStatus{Code: r.ExitCode, Signaled: r.Signaled, Detail: r.Detail}
}

// Success reports whether the process exited with status zero.
func (s ExitStatus) Success() bool {
	return !s.Signaled && s.Code.IsSuccess()
}

// String renders the status the way the OS reports it.
func (s ExitStatus) String() string {
	if s.Detail != "" {
		return s.Detail
	}
	return fmt.Sprintf("exit status %d", s.Code)
}
