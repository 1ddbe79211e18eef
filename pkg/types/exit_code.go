// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	ExitCodeSuccess ExitCode = 0
	// ExitCodeFailure is what ops exits with when no container code applies.
	ExitCodeFailure ExitCode = 1
	// ExitCodeSignaled stands in for a container process killed by a
	// signal. It is not a code a process can exit with.
	ExitCodeSignaled ExitCode = -1
)

// ErrInvalidExitCode is wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is the status a container or an ops invocation exits with.
	ExitCode int

	// InvalidExitCodeError reports a code outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (want 0-255)", e.Value)
}

func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate rejects codes a POSIX process cannot exit with, including
// ExitCodeSignaled.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether c is zero.
func (c ExitCode) IsSuccess() bool { return c == ExitCodeSuccess }

// Process returns the code ops itself should exit with to pass c on:
// c when it is a valid exit code, ExitCodeFailure otherwise.
func (c ExitCode) Process() ExitCode {
	if c.Validate() != nil {
		return ExitCodeFailure
	}
	return c
}

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
