// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/syntax"

	"github.com/opsrun/ops/internal/runtime"
)

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}

// renderPlan prints one block per mission with shell-quoted command lines
// that can be pasted into a terminal.
func renderPlan(w io.Writer, engine string, planned []runtime.PlannedMission) {
	if len(planned) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No mission matches."))
		return
	}
	for i, p := range planned {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, MissionStyle.Render(p.Name))
		if len(p.Build) > 0 {
			fmt.Fprintln(w, "  "+shellJoin(engine, p.Build))
		}
		fmt.Fprintln(w, "  "+shellJoin(engine, p.Run))
	}
}

func shellJoin(engine string, args []string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, engine)
	for _, arg := range args {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			quoted = strconv.Quote(arg)
		}
		words = append(words, quoted)
	}
	return strings.Join(words, " ")
}
