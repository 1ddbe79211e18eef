// SPDX-License-Identifier: MPL-2.0

// Package runtime runs plan missions and the plan shell in containers.
//
// ImageResolver turns an opsfile.ImageSpec into an image reference, building
// it when needed. InvocationBuilder maps plan options to container run
// options. Launcher starts exactly one container per call, either feeding a
// script to its stdin (ScriptMode) or attaching the terminal
// (InteractiveMode). Executor runs the selected missions one after another
// and aggregates their outcome; ShellLauncher opens the plan's shell.
package runtime
