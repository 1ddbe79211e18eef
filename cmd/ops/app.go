// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/opsrun/ops/internal/config"
	"github.com/opsrun/ops/internal/container"
	"github.com/opsrun/ops/internal/issue"
	"github.com/opsrun/ops/internal/runtime"
	"github.com/opsrun/ops/pkg/opsfile"
)

type (
	// EngineFactory returns the engine for preferred. With requireAvailable
	// set it may fall back to another engine and fails when none answers.
	EngineFactory func(preferred container.EngineType, requireAvailable bool) (container.Engine, error)

	// App is the composition root of the CLI. Commands read settings and
	// services from it instead of package globals.
	App struct {
		Config  config.Provider
		Engines EngineFactory

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		flags    globalFlags
		settings *config.Config
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config  config.Provider
		Engines EngineFactory
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
	}

	globalFlags struct {
		verbose    bool
		configPath string
		planFile   string
		engine     string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:  deps.Config,
		Engines: deps.Engines,
		stdin:   deps.Stdin,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Engines == nil {
		app.Engines = defaultEngines
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func defaultEngines(preferred container.EngineType, requireAvailable bool) (container.Engine, error) {
	if requireAvailable {
		return container.NewEngine(preferred)
	}
	return container.ForType(preferred)
}

// loadSettings loads the configuration and applies the global flags on
// top of it.
func (a *App) loadSettings(ctx context.Context) (*config.Config, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, withIssue(err, issue.ConfigLoadFailedId)
	}

	cfg := loaded.Config
	if a.flags.verbose {
		cfg.UI.Verbose = true
	}
	if a.flags.planFile != "" {
		cfg.PlanFile = a.flags.planFile
	}
	if a.flags.engine != "" {
		engine := config.ContainerEngine(a.flags.engine)
		if err := engine.Validate(); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("select container engine").
				WithResource("--engine").
				WithSuggestion("Use --engine docker or --engine podman").
				Wrap(err).
				BuildError()
		}
		cfg.ContainerEngine = engine
	}
	if loaded.Path != "" {
		slog.Debug("configuration loaded", "path", loaded.Path)
	}
	return cfg, nil
}

// loadPlan resolves the plan and logs its lint warnings.
func (a *App) loadPlan() (*opsfile.Plan, error) {
	plan, err := a.resolvePlan()
	if err != nil {
		return nil, err
	}
	for _, w := range opsfile.Lint(plan) {
		slog.Warn("plan lint", "file", plan.FilePath, "warning", w.String())
	}
	return plan, nil
}

// resolvePlan loads the plan selected by --file, plan_file or discovery in
// the current directory.
func (a *App) resolvePlan() (*opsfile.Plan, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	plan, err := opsfile.Resolve(dir, a.settings.PlanFile)
	if err != nil {
		return nil, planError(err)
	}
	return plan, nil
}

type (
	// services wires the runtime around the configured engine.
	services struct {
		engine   container.Engine
		resolver *runtime.ImageResolver
		launcher *runtime.Launcher
	}

	serviceOptions struct {
		// requireAvailable probes the engine and falls back when it does
		// not answer.
		requireAvailable bool
		// structuredStdout reserves stdout for machine-readable output;
		// build progress goes to stderr.
		structuredStdout bool
	}
)

func (a *App) services(opts serviceOptions) (*services, error) {
	preferred := container.EngineType(a.settings.ContainerEngine)
	engine, err := a.Engines(preferred, opts.requireAvailable)
	if err != nil {
		return nil, engineError(err)
	}
	if engine.Name() != preferred.String() {
		slog.Warn("container engine unavailable, falling back", "preferred", preferred, "using", engine.Name())
	}
	slog.Debug("container engine selected", "engine", engine.Name())

	socket := daemonSocket(a.settings, engine)
	slog.Debug("daemon socket selected", "socket", socket)
	builder, err := runtime.NewInvocationBuilder(socket)
	if err != nil {
		return nil, err
	}

	buildStdout := a.stdout
	if opts.structuredStdout {
		buildStdout = a.stderr
	}

	return &services{
		engine: engine,
		resolver: runtime.NewImageResolver(engine,
			runtime.WithTempDir(a.settings.TempDir),
			runtime.WithBuildOutput(buildStdout, a.stderr),
		),
		launcher: runtime.NewLauncher(engine, builder, runtime.WithStdio(a.stdin, a.stdout, a.stderr)),
	}, nil
}

// daemonSocket returns the configured daemon socket, or the socket of the
// engine in use when none is configured.
func daemonSocket(cfg *config.Config, engine container.Engine) string {
	if cfg.DaemonSocket != "" {
		return cfg.DaemonSocket
	}
	return engine.DaemonSocket()
}
