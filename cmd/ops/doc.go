// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the ops command line: execute, shell, validate and
// config. Commands receive an App that carries the config provider, the
// engine factory and the process stdio.
package cmd
