// SPDX-License-Identifier: MPL-2.0

package opsfile

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"

	"github.com/opsrun/ops/pkg/cueutil"
)

//go:embed opsfile_schema.cue
var opsfileSchema string

type (
	// ParseError is returned for any plan file that cannot be read,
	// decoded or validated.
	ParseError struct {
		Path string
		Err  error
	}

	planDoc struct {
		Missions map[string]missionDoc `json:"missions,omitempty"`
		Shell    *containerDoc         `json:"shell,omitempty"`
	}

	containerDoc struct {
		Image       string   `json:"image,omitempty"`
		Build       string   `json:"build,omitempty"`
		Recipe      string   `json:"recipe,omitempty"`
		ForwardUser bool     `json:"forward_user,omitempty"`
		Volumes     []string `json:"volumes,omitempty"`
		Environment []string `json:"environment,omitempty"`
	}

	missionDoc struct {
		Image       string   `json:"image,omitempty"`
		Build       string   `json:"build,omitempty"`
		Recipe      string   `json:"recipe,omitempty"`
		ForwardUser bool     `json:"forward_user,omitempty"`
		Volumes     []string `json:"volumes,omitempty"`
		Environment []string `json:"environment,omitempty"`
		Script      scriptText `json:"script"`
	}

	// scriptText is a mission script. Unquoted YAML and TOML scalars such as
	// `script: true` or `script = 42` are kept as their literal text.
	scriptText string
)

// UnmarshalJSON keeps strings as decoded and any other scalar, which the
// schema limits to booleans and numbers, as its literal text.
func (s *scriptText) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = scriptText(str)
		return nil
	}
	*s = scriptText(strings.TrimSpace(string(data)))
	return nil
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid plan file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Err }

// Load reads and parses the plan file at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return Parse(data, path)
}

// Parse parses plan content. The encoding is inferred from the extension of
// path (TOML for .toml, YAML otherwise).
func Parse(data []byte, path string) (*Plan, error) {
	format := cueutil.FormatFromFilename(path)
	result, err := cueutil.ParseAndDecodeString[planDoc](
		opsfileSchema,
		data,
		"#Plan",
		cueutil.WithFilename(path),
		cueutil.WithFormat(format),
	)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	doc := result.Value
	names := missionOrder(result.Unified, doc.Missions)
	if format == cueutil.FormatTOML {
		slices.Sort(names)
	}

	plan := &Plan{FilePath: path, Missions: make([]*Mission, 0, len(names))}
	var errs []error
	for _, name := range names {
		md := doc.Missions[name]
		opts, err := md.container().options("mission " + name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		plan.Missions = append(plan.Missions, &Mission{Name: name, Options: opts, Script: string(md.Script)})
	}
	if doc.Shell != nil {
		opts, err := doc.Shell.options("shell")
		if err != nil {
			errs = append(errs, err)
		} else {
			plan.Shell = &Shell{Options: opts}
		}
	}
	if len(errs) > 0 {
		return nil, &ParseError{Path: path, Err: errors.Join(errs...)}
	}
	return plan, nil
}

// missionOrder returns the mission names in declaration order, falling back
// to sorted order if the CUE value cannot be iterated.
func missionOrder(unified cue.Value, missions map[string]missionDoc) []string {
	sorted := func() []string {
		names := make([]string, 0, len(missions))
		for name := range missions {
			names = append(names, name)
		}
		slices.Sort(names)
		return names
	}

	v := unified.LookupPath(cue.ParsePath("missions"))
	if !v.Exists() {
		return sorted()
	}
	iter, err := v.Fields()
	if err != nil {
		return sorted()
	}
	var names []string
	for iter.Next() {
		names = append(names, iter.Selector().Unquoted())
	}
	if len(names) != len(missions) {
		return sorted()
	}
	return names
}

func (m missionDoc) container() containerDoc {
	return containerDoc{
		Image:       m.Image,
		Build:       m.Build,
		Recipe:      m.Recipe,
		ForwardUser: m.ForwardUser,
		Volumes:     m.Volumes,
		Environment: m.Environment,
	}
}

func (c containerDoc) options(owner string) (ContainerOptions, error) {
	var (
		keys  []string
		image ImageSpec
		errs  []error
	)
	if c.Image != "" {
		keys = append(keys, "image")
		image = ImageTag{Tag: c.Image}
	}
	if c.Build != "" {
		keys = append(keys, "build")
		image = BuildContext{Path: c.Build}
	}
	if c.Recipe != "" {
		keys = append(keys, "recipe")
		image = Recipe{Dockerfile: c.Recipe}
	}
	if len(keys) != 1 {
		errs = append(errs, &ImageSourceError{Owner: owner, Keys: keys})
	}

	opts := ContainerOptions{Image: image, ForwardUser: c.ForwardUser}
	for _, v := range c.Volumes {
		spec := VolumeSpec(v)
		if err := spec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", owner, err))
		}
		opts.Volumes = append(opts.Volumes, spec)
	}
	for _, e := range c.Environment {
		spec := EnvSpec(e)
		if err := spec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", owner, err))
		}
		opts.Environment = append(opts.Environment, spec)
	}
	if len(errs) > 0 {
		return ContainerOptions{}, errors.Join(errs...)
	}
	return opts, nil
}
