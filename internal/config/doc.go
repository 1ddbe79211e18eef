// SPDX-License-Identifier: MPL-2.0

// Package config loads the ops application configuration.
//
// Settings come from $XDG_CONFIG_HOME/ops/config.cue (or the file given with
// --config), validated against the embedded #Config schema and merged into
// Viper on top of the defaults. Every key can be overridden from the
// environment with an OPS_ prefix, nested keys joined by underscores
// (OPS_UI_VERBOSE=true).
package config
