// SPDX-License-Identifier: MPL-2.0

// Package opsfile loads ops plan files.
//
// A plan file (Ops.yaml by default) declares named missions, each a script
// run inside a container, and at most one interactive shell container.
// Plans may also be written as TOML (Ops.toml). Whatever the encoding, the
// document is validated against the embedded CUE schema in
// opsfile_schema.cue before it is decoded into a Plan.
package opsfile
