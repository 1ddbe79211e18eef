// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"

	"github.com/opsrun/ops/pkg/opsfile"
)

// ShellLauncher opens the plan's interactive shell container.
type ShellLauncher struct {
	resolver *ImageResolver
	launcher *Launcher
}

// NewShellLauncher creates a shell launcher.
func NewShellLauncher(resolver *ImageResolver, launcher *Launcher) *ShellLauncher {
	return &ShellLauncher{resolver: resolver, launcher: launcher}
}

// LaunchShell resolves the shell image and runs it interactively with args
// as the container command. A nil shell yields opsfile.ErrShellNotConfigured.
func (s *ShellLauncher) LaunchShell(ctx context.Context, shell *opsfile.Shell, args []string) (ExitStatus, error) {
	if shell == nil {
		return ExitStatus{}, opsfile.ErrShellNotConfigured
	}
	image, err := s.resolver.Resolve(ctx, shell.Options.Image)
	if err != nil {
		return ExitStatus{}, err
	}
	return s.launcher.Launch(ctx, shell.Options, image, InteractiveMode{Args: args})
}
