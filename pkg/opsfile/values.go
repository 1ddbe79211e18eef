// SPDX-License-Identifier: MPL-2.0

package opsfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidVolumeSpec is the sentinel error wrapped by InvalidVolumeSpecError.
	ErrInvalidVolumeSpec = errors.New("invalid volume spec")

	// ErrInvalidEnvSpec is the sentinel error wrapped by InvalidEnvSpecError.
	ErrInvalidEnvSpec = errors.New("invalid environment entry")

	// ErrImageSource is the sentinel error wrapped by ImageSourceError.
	ErrImageSource = errors.New("container must set exactly one of 'image', 'build' or 'recipe'")
)

type (
	// VolumeSpec is a bind mount in "host:container[:options]" form. It is
	// passed to the engine verbatim.
	VolumeSpec string

	// InvalidVolumeSpecError is returned when a VolumeSpec lacks a host or
	// container part.
	InvalidVolumeSpecError struct {
		Value  VolumeSpec
		Reason string
	}

	// EnvSpec is an environment entry in "KEY=VALUE" form. The value may be
	// empty.
	EnvSpec string

	// InvalidEnvSpecError is returned when an EnvSpec has no '=' or an empty key.
	InvalidEnvSpecError struct {
		Value EnvSpec
	}

	// ImageSourceError is returned when a container sets zero or several
	// image sources.
	ImageSourceError struct {
		// Owner is "mission <name>" or "shell".
		Owner string
		// Keys are the image source keys that were set.
		Keys []string
	}
)

// String returns the spec as given.
func (v VolumeSpec) String() string { return string(v) }

// Validate returns nil if the spec has a non-empty host and container part.
func (v VolumeSpec) Validate() error {
	parts := strings.SplitN(string(v), ":", 3)
	switch {
	case v == "":
		return &InvalidVolumeSpecError{Value: v, Reason: "must not be empty"}
	case len(parts) < 2:
		return &InvalidVolumeSpecError{Value: v, Reason: "must be in host:container[:options] form"}
	case parts[0] == "":
		return &InvalidVolumeSpecError{Value: v, Reason: "host path is empty"}
	case parts[1] == "":
		return &InvalidVolumeSpecError{Value: v, Reason: "container path is empty"}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidVolumeSpecError) Error() string {
	return fmt.Sprintf("invalid volume spec %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidVolumeSpec.
func (e *InvalidVolumeSpecError) Unwrap() error { return ErrInvalidVolumeSpec }

// String returns the entry as given.
func (e EnvSpec) String() string { return string(e) }

// Key returns the part before the first '='.
func (e EnvSpec) Key() string {
	key, _, _ := strings.Cut(string(e), "=")
	return key
}

// Validate returns nil if the entry is KEY=VALUE with a non-empty key.
func (e EnvSpec) Validate() error {
	key, _, ok := strings.Cut(string(e), "=")
	if !ok || strings.TrimSpace(key) == "" {
		return &InvalidEnvSpecError{Value: e}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidEnvSpecError) Error() string {
	return fmt.Sprintf("invalid environment entry %q (must be KEY=VALUE)", e.Value)
}

// Unwrap returns ErrInvalidEnvSpec.
func (e *InvalidEnvSpecError) Unwrap() error { return ErrInvalidEnvSpec }

// Error implements the error interface.
func (e *ImageSourceError) Error() string {
	if len(e.Keys) == 0 {
		return fmt.Sprintf("%s: one of 'image', 'build' or 'recipe' is required", e.Owner)
	}
	return fmt.Sprintf("%s: 'image', 'build' and 'recipe' are exclusive, got %s", e.Owner, strings.Join(e.Keys, ", "))
}

// Unwrap returns ErrImageSource.
func (e *ImageSourceError) Unwrap() error { return ErrImageSource }
