// SPDX-License-Identifier: MPL-2.0

package opsfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileNames are the plan file names searched for, in order. cio.yaml is the
// name used by earlier releases.
var FileNames = []string{"Ops.yaml", "Ops.yml", "Ops.toml", "cio.yaml"}

// Discover returns the path of the first plan file found in dir.
// It returns an error wrapping ErrPlanNotFound when there is none.
func Discover(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %v)", ErrPlanNotFound, dir, FileNames)
}

// Resolve loads the plan at explicit when it is set, and otherwise the plan
// discovered in dir.
func Resolve(dir, explicit string) (*Plan, error) {
	path := explicit
	if path == "" {
		var err error
		if path, err = Discover(dir); err != nil {
			return nil, err
		}
	}
	return Load(path)
}
