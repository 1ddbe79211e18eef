// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific file. A missing file is
	// an error.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup. A missing
	// config.cue inside it is not an error.
	ConfigDirPath string
}

// Loaded is a configuration together with the file it came from.
type Loaded struct {
	Config *Config
	// Path is empty when no config file was read.
	Path string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Loaded, error)
}

type fileProvider struct{}

// NewProvider creates a provider backed by the config file, the OPS_*
// environment and the built-in defaults.
func NewProvider() Provider {
	return &fileProvider{}
}

func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Path: path}, nil
}
