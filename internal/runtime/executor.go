// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opsrun/ops/pkg/opsfile"
)

// placeholderImage stands for an image that would be built at run time.
const placeholderImage = "<built-image>"

type (
	// MissionResult is the result of one executed mission.
	MissionResult struct {
		Name      string     `yaml:"name"`
		Status    ExitStatus `yaml:"status"`
		Succeeded bool       `yaml:"succeeded"`
	}

	// Outcome aggregates the results of a run.
	Outcome struct {
		Results []MissionResult `yaml:"results"`
		// Failed lists the names of missions that exited non-zero, in
		// execution order.
		Failed []string `yaml:"failed,omitempty"`
	}

	// Observer is notified as missions start and finish.
	Observer interface {
		MissionStarted(m *opsfile.Mission)
		MissionFinished(m *opsfile.Mission, result MissionResult)
	}

	// PlannedMission is what executing a mission would run.
	PlannedMission struct {
		Name string `yaml:"name"`
		// Build is the build command line, empty for tagged images.
		Build []string `yaml:"build,omitempty"`
		Run   []string `yaml:"run"`
	}

	// Executor runs missions sequentially.
	Executor struct {
		resolver *ImageResolver
		launcher *Launcher
		observer Observer
	}

	nopObserver struct{}
)

func (nopObserver) MissionStarted(*opsfile.Mission)                 {}
func (nopObserver) MissionFinished(*opsfile.Mission, MissionResult) {}

// Success reports whether no mission failed.
func (o *Outcome) Success() bool {
	return len(o.Failed) == 0
}

// NewExecutor creates an executor. observer may be nil.
func NewExecutor(resolver *ImageResolver, launcher *Launcher, observer Observer) *Executor {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Executor{resolver: resolver, launcher: launcher, observer: observer}
}

// Select returns the missions whose name contains pattern, in plan order.
// An empty pattern selects every mission.
func Select(missions []*opsfile.Mission, pattern string) []*opsfile.Mission {
	var selected []*opsfile.Mission
	for _, m := range missions {
		if strings.Contains(m.Name, pattern) {
			selected = append(selected, m)
		}
	}
	return selected
}

// ExecuteAll runs every mission matching pattern, one at a time. A mission
// that exits non-zero is recorded in the outcome and the run continues.
// Image resolution and launch setup errors stop the run and are returned
// with the outcome collected so far.
func (e *Executor) ExecuteAll(ctx context.Context, missions []*opsfile.Mission, pattern string) (*Outcome, error) {
	outcome := &Outcome{}
	for _, m := range Select(missions, pattern) {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		e.observer.MissionStarted(m)
		result, err := e.execute(ctx, m)
		if err != nil {
			return outcome, fmt.Errorf("mission '%s': %w", m.Name, err)
		}

		outcome.Results = append(outcome.Results, result)
		if !result.Succeeded {
			outcome.Failed = append(outcome.Failed, m.Name)
		}
		e.observer.MissionFinished(m, result)
	}
	return outcome, nil
}

func (e *Executor) execute(ctx context.Context, m *opsfile.Mission) (MissionResult, error) {
	image, err := e.resolver.Resolve(ctx, m.Options.Image)
	if err != nil {
		return MissionResult{}, err
	}
	status, err := e.launcher.Launch(ctx, m.Options, image, ScriptMode{Script: m.Script})
	if err != nil {
		return MissionResult{}, err
	}
	slog.Debug("mission finished", "mission", m.Name, "status", status.String())
	return MissionResult{Name: m.Name, Status: status, Succeeded: status.Success()}, nil
}

// Plan returns the command lines ExecuteAll would run for pattern, without
// running anything. Built images appear as a placeholder.
func (e *Executor) Plan(missions []*opsfile.Mission, pattern string) ([]PlannedMission, error) {
	engine := e.launcher.engine
	var planned []PlannedMission
	for _, m := range Select(missions, pattern) {
		p := PlannedMission{Name: m.Name}
		image := placeholderImage
		if buildOpts, ok := BuildOptions(m.Options.Image, "<iidfile>"); ok {
			p.Build = engine.BuildArgs(buildOpts)
		} else if tag, ok := m.Options.Image.(opsfile.ImageTag); ok {
			image = tag.Tag
		}
		run, err := e.launcher.builder.Args(engine, m.Options, image, ScriptMode{Script: m.Script})
		if err != nil {
			return nil, fmt.Errorf("mission '%s': %w", m.Name, err)
		}
		p.Run = run
		planned = append(planned, p)
	}
	return planned, nil
}
