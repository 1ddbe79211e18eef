// SPDX-License-Identifier: MPL-2.0

// Package testutil gates and throttles tests that need a real container
// engine.
package testutil
