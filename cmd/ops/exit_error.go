// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/opsrun/ops/pkg/types"
)

// ExitError requests a specific process exit code from a RunE handler. A
// nil Err means the failure was already reported.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
