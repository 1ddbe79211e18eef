// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxFileSize is the default maximum document size (5MiB).
	DefaultMaxFileSize int64 = 5 * 1024 * 1024

	// FormatCUE is CUE source.
	FormatCUE Format = "cue"
	// FormatYAML is a single YAML document.
	FormatYAML Format = "yaml"
	// FormatTOML is a TOML document.
	FormatTOML Format = "toml"
)

type (
	// Format identifies the encoding of a user document.
	Format string

	parseOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
		format      Format
	}

	// Option configures parsing behavior.
	Option func(*parseOptions)
)

// FormatFromFilename infers the document format from a file extension.
// Unknown extensions are treated as YAML.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cue":
		return FormatCUE
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
		format:      FormatCUE,
	}
}

// WithMaxFileSize sets the maximum allowed document size.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) {
		o.maxFileSize = size
	}
}

// WithConcrete sets whether all values must be concrete after unification.
// Default is true.
//
// Set to false for config files where unset values are acceptable.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) {
		o.concrete = concrete
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}

// WithFormat sets the encoding of the user document. Default is FormatCUE.
func WithFormat(format Format) Option {
	return func(o *parseOptions) {
		o.format = format
	}
}
