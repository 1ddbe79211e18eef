// SPDX-License-Identifier: MPL-2.0

package opsfile

import "errors"

var (
	// ErrPlanNotFound is returned when no plan file exists in the searched directory.
	ErrPlanNotFound = errors.New("no plan file found")

	// ErrShellNotConfigured is returned when a shell is requested from a plan
	// that has no shell definition.
	ErrShellNotConfigured = errors.New("missing 'shell' definition")
)

type (
	// ImageSpec says where a container image comes from. The only
	// implementations are ImageTag, BuildContext and Recipe.
	ImageSpec interface {
		String() string
		imageSpec()
	}

	// ImageTag is an existing image reference, used verbatim.
	ImageTag struct {
		Tag string
	}

	// BuildContext is a directory handed to the engine's build command.
	BuildContext struct {
		Path string
	}

	// Recipe is inline Dockerfile text, built with the current directory as
	// build context.
	Recipe struct {
		Dockerfile string
	}

	// ContainerOptions describes how a container is set up. It is shared by
	// missions and the shell.
	ContainerOptions struct {
		Image       ImageSpec
		ForwardUser bool
		Volumes     []VolumeSpec
		Environment []EnvSpec
	}

	// Mission is a named script run non-interactively inside a container.
	Mission struct {
		Name    string
		Options ContainerOptions
		Script  string
	}

	// Shell is the interactive container of a plan.
	Shell struct {
		Options ContainerOptions
	}

	// Plan is a loaded plan file.
	Plan struct {
		// FilePath is the file the plan was loaded from.
		FilePath string
		// Missions are in file declaration order (sorted by name for TOML).
		Missions []*Mission
		// Shell is nil when the plan declares none.
		Shell *Shell
	}
)

func (ImageTag) imageSpec()     {}
func (BuildContext) imageSpec() {}
func (Recipe) imageSpec()       {}

func (i ImageTag) String() string     { return i.Tag }
func (b BuildContext) String() string { return "build:" + b.Path }

func (r Recipe) String() string {
	return "recipe"
}

// Mission returns the mission with the given name, or nil.
func (p *Plan) Mission(name string) *Mission {
	for _, m := range p.Missions {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// MissionNames returns the mission names in plan order.
func (p *Plan) MissionNames() []string {
	names := make([]string, len(p.Missions))
	for i, m := range p.Missions {
		names[i] = m.Name
	}
	return names
}

// RequireShell returns the plan's shell or ErrShellNotConfigured.
func (p *Plan) RequireShell() (*Shell, error) {
	if p.Shell == nil {
		return nil, ErrShellNotConfigured
	}
	return p.Shell, nil
}
