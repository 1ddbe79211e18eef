// SPDX-License-Identifier: MPL-2.0

package opsfile

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Warning is a non-fatal finding about a plan.
type Warning struct {
	Mission string
	Message string
}

// String renders the warning for the console.
func (w Warning) String() string {
	return fmt.Sprintf("mission '%s': %s", w.Mission, w.Message)
}

// Lint parses every mission script as shell and reports what looks wrong.
// Findings are warnings only: the container image decides how the script on
// its stdin is interpreted, so a script that is not shell may be fine.
// Scripts whose shebang names a non-shell interpreter are skipped.
func Lint(plan *Plan) []Warning {
	var warnings []Warning
	for _, m := range plan.Missions {
		if strings.TrimSpace(m.Script) == "" {
			warnings = append(warnings, Warning{Mission: m.Name, Message: "script is empty"})
			continue
		}
		if !looksLikeShell(m.Script) {
			continue
		}
		if _, err := syntax.NewParser().Parse(strings.NewReader(m.Script), m.Name); err != nil {
			warnings = append(warnings, Warning{Mission: m.Name, Message: fmt.Sprintf("script syntax: %v", err)})
		}
	}
	return warnings
}

func looksLikeShell(script string) bool {
	line, _, _ := strings.Cut(script, "\n")
	if !strings.HasPrefix(line, "#!") {
		return true
	}
	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return true
	}
	interp := fields[0]
	if strings.HasSuffix(interp, "/env") && len(fields) > 1 {
		interp = fields[1]
	}
	switch interp[strings.LastIndex(interp, "/")+1:] {
	case "sh", "bash", "ash", "dash", "ksh", "mksh":
		return true
	}
	return false
}
