// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/opsrun/ops/cmd/ops"

func main() {
	cmd.Execute()
}
