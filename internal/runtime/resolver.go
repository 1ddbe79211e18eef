// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/opsrun/ops/internal/container"
	"github.com/opsrun/ops/pkg/opsfile"
)

const (
	// recipeContext is the build context of inline recipes: the current
	// directory of the ops process.
	recipeContext = "."
	recipeSource  = "recipe"
)

type (
	// ImageResolver turns image specs into image references. It keeps no
	// cache: every build spec is built again on every call.
	ImageResolver struct {
		engine  container.Engine
		tempDir string
		stdout  io.Writer
		stderr  io.Writer
	}

	// ResolverOption configures an ImageResolver.
	ResolverOption func(*ImageResolver)
)

// WithTempDir sets where image ID files are created. Empty means os.TempDir().
func WithTempDir(dir string) ResolverOption {
	return func(r *ImageResolver) {
		r.tempDir = dir
	}
}

// WithBuildOutput sets where build output is written.
func WithBuildOutput(stdout, stderr io.Writer) ResolverOption {
	return func(r *ImageResolver) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewImageResolver creates a resolver that builds with engine. Build output
// goes to the process stdout and stderr unless WithBuildOutput is given.
func NewImageResolver(engine container.Engine, opts ...ResolverOption) *ImageResolver {
	r := &ImageResolver{engine: engine, stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the image reference for spec. Tags are returned verbatim;
// build contexts and recipes are built with one engine invocation and the
// resulting image ID is returned.
func (r *ImageResolver) Resolve(ctx context.Context, spec opsfile.ImageSpec) (string, error) {
	switch s := spec.(type) {
	case opsfile.ImageTag:
		return s.Tag, nil
	case opsfile.BuildContext:
		return r.build(ctx, s.Path, container.BuildOptions{ContextDir: s.Path})
	case opsfile.Recipe:
		return r.build(ctx, recipeSource, recipeBuildOptions(s, ""))
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownImageSpec, spec)
	}
}

// BuildOptions returns the build options Resolve would use for spec, with
// iidFile as the image ID file. It returns false for specs that need no build.
func BuildOptions(spec opsfile.ImageSpec, iidFile string) (container.BuildOptions, bool) {
	switch s := spec.(type) {
	case opsfile.BuildContext:
		return container.BuildOptions{ContextDir: s.Path, IIDFile: iidFile}, true
	case opsfile.Recipe:
		return recipeBuildOptions(s, iidFile), true
	default:
		return container.BuildOptions{}, false
	}
}

// recipeBuildOptions feeds the recipe's Dockerfile on stdin with an empty
// build context.
func recipeBuildOptions(r opsfile.Recipe, iidFile string) container.BuildOptions {
	return container.BuildOptions{
		ContextDir: recipeContext,
		Dockerfile: container.StdinDockerfile,
		IIDFile:    iidFile,
		Input:      []byte(r.Dockerfile),
	}
}

func (r *ImageResolver) build(ctx context.Context, source string, opts container.BuildOptions) (image string, err error) {
	iid, err := os.CreateTemp(r.tempDir, "ops-iid-*")
	if err != nil {
		return "", &BuildError{Source: source, Err: fmt.Errorf("creating image ID file: %w", err)}
	}
	iidPath := iid.Name()
	defer func() {
		if rmErr := os.Remove(iidPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Debug("removing image ID file", "path", iidPath, "error", rmErr)
		}
	}()
	if err := iid.Close(); err != nil {
		return "", &BuildError{Source: source, Err: err}
	}

	opts.IIDFile = iidPath
	opts.Stdout = r.stdout
	opts.Stderr = r.stderr

	result, err := r.engine.Build(ctx, opts)
	if err != nil {
		return "", &BuildError{Source: source, Err: err}
	}
	if !result.Success() {
		status := exitStatusFrom(result)
		return "", &BuildError{Source: source, Status: &status}
	}

	data, err := os.ReadFile(iidPath)
	if err != nil {
		return "", &BuildError{Source: source, Err: fmt.Errorf("reading image ID: %w", err)}
	}
	image = strings.TrimSpace(string(data))
	if image == "" {
		return "", &BuildError{Source: source, Err: errors.New("build wrote no image ID")}
	}

	slog.Debug("image built", "source", source, "image", image)
	return image, nil
}
