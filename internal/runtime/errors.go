// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrBuildFailed is the sentinel error wrapped by BuildError.
	ErrBuildFailed = errors.New("image build failed")

	// ErrLaunchSetup is the sentinel error wrapped by LaunchSetupError.
	ErrLaunchSetup = errors.New("container could not be launched")

	// ErrUnknownImageSpec is returned for an opsfile.ImageSpec implementation
	// the resolver does not know.
	ErrUnknownImageSpec = errors.New("unknown image spec")
)

type (
	// BuildError is returned when an image build exits non-zero or its image
	// ID cannot be read.
	BuildError struct {
		// Source is the build context path, or "recipe".
		Source string
		// Status is the build's exit status; nil when the build never ran.
		Status *ExitStatus
		// Err is the underlying cause, if any.
		Err error
	}

	// LaunchSetupError is returned when a container process cannot be set up
	// or started.
	LaunchSetupError struct {
		Image string
		Err   error
	}
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	switch {
	case e.Status != nil && !e.Status.Success():
		return fmt.Sprintf("image build from %s failed with %s", e.Source, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("image build from %s failed: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("image build from %s failed", e.Source)
	}
}

// Unwrap returns ErrBuildFailed and the underlying cause.
func (e *BuildError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBuildFailed}
	}
	return []error{ErrBuildFailed, e.Err}
}

// Error implements the error interface.
func (e *LaunchSetupError) Error() string {
	return fmt.Sprintf("failed to launch container from %s: %v", e.Image, e.Err)
}

// Unwrap returns ErrLaunchSetup and the underlying cause.
func (e *LaunchSetupError) Unwrap() []error { return []error{ErrLaunchSetup, e.Err} }
