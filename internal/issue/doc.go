// SPDX-License-Identifier: MPL-2.0

// Package issue provides operator-facing errors for the ops CLI.
//
// ActionableError wraps a failure with the operation that was attempted, the
// resource involved and suggestions for fixing it. The catalog in issue.go
// holds longer Markdown guidance for well-known failure categories, rendered
// with glamour.
package issue
