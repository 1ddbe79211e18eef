// SPDX-License-Identifier: MPL-2.0

// Package container wraps the command-line clients of container engines
// (Docker and Podman).
//
// Both engines embed BaseCLIEngine, which renders "build" and "run" command
// lines and executes them. Input for the child's standard input (a mission
// script or an inline Dockerfile) is written by a separate goroutine while
// the caller waits for the process, so a child that stops reading early
// cannot deadlock the runner.
//
// Engine selection uses NewEngine(EngineType), which falls back to the other
// engine when the preferred one is unavailable.
package container
