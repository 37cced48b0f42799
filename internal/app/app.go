// Package app implements the application layer for halyard.
package app

import (
	"context"

	"go.halyard.dev/halyard/internal/adapters/supervisor" //nolint:depguard // Wired in app layer
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.halyard.dev/halyard/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App exposes the pipeline operations the CLI invokes. Each operation loads
// the configuration fresh so commands can run against different projects in
// one process lifetime (tests do).
type App struct {
	configLoader ports.ConfigLoader
	pipeline     *pipeline.Pipeline
	launcher     ports.Launcher
	executor     ports.Executor
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	pipe *pipeline.Pipeline,
	launcher ports.Launcher,
	executor ports.Executor,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		pipeline:     pipe,
		launcher:     launcher,
		executor:     executor,
		logger:       logger,
	}
}

func (a *App) load(configPath string) (*domain.PipelineConfig, error) {
	cfg, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load pipeline configuration")
	}
	return cfg, nil
}

// Resolve runs the dependency resolution stage only.
func (a *App) Resolve(ctx context.Context, configPath string) error {
	cfg, err := a.load(configPath)
	if err != nil {
		return err
	}
	env, err := a.pipeline.Resolve(ctx, cfg)
	if err != nil {
		return zerr.Wrap(err, "dependency resolution failed")
	}
	a.logger.Info("resolved environment " + env.Fingerprint + " at " + env.Root)
	return nil
}

// Assemble runs the assembly stage against a previously resolved
// environment. Running it before resolution is an ordering error.
func (a *App) Assemble(ctx context.Context, configPath string) error {
	cfg, err := a.load(configPath)
	if err != nil {
		return err
	}
	env, err := a.pipeline.LoadResolved(ctx, cfg)
	if err != nil {
		return err
	}
	root, err := a.pipeline.Assemble(ctx, cfg, env)
	if err != nil {
		return zerr.Wrap(err, "runtime root assembly failed")
	}
	a.logger.Info("assembled runtime root at " + root.Path)
	return nil
}

// Build runs resolution and assembly back to back.
func (a *App) Build(ctx context.Context, configPath string) error {
	cfg, err := a.load(configPath)
	if err != nil {
		return err
	}
	env, err := a.pipeline.Resolve(ctx, cfg)
	if err != nil {
		return zerr.Wrap(err, "dependency resolution failed")
	}
	root, err := a.pipeline.Assemble(ctx, cfg, env)
	if err != nil {
		return zerr.Wrap(err, "runtime root assembly failed")
	}
	a.logger.Info("assembled runtime root at " + root.Path)
	return nil
}

// Launch starts the service from an assembled runtime root and supervises it
// with the liveness monitor until the process exits, the monitor declares it
// unhealthy, or the context is canceled.
func (a *App) Launch(ctx context.Context, configPath string) error {
	cfg, err := a.load(configPath)
	if err != nil {
		return err
	}
	root, err := a.pipeline.AssembledRoot(cfg)
	if err != nil {
		return err
	}

	monitor := supervisor.NewMonitor(
		supervisor.ProbeFor(cfg.Launch.Probe, a.executor),
		cfg.Launch.Probe,
		a.logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		// Stops the monitor once the process is gone, however it exited.
		defer cancel()
		return a.launcher.Launch(runCtx, &cfg.Launch, root)
	})
	g.Go(func() error {
		return monitor.Run(runCtx)
	})

	return g.Wait()
}

// Probe runs a single liveness check against the configured probe and
// reports its outcome.
func (a *App) Probe(ctx context.Context, configPath string) error {
	cfg, err := a.load(configPath)
	if err != nil {
		return err
	}

	monitor := supervisor.NewMonitor(
		supervisor.ProbeFor(cfg.Launch.Probe, a.executor),
		cfg.Launch.Probe,
		a.logger,
	)
	if err := monitor.CheckOnce(ctx); err != nil {
		return zerr.Wrap(err, "liveness probe failed")
	}
	a.logger.Info("liveness probe passed")
	return nil
}

// Status reports the pipeline state derived from the receipts on disk.
func (a *App) Status(_ context.Context, configPath string) (domain.PipelineState, error) {
	cfg, err := a.load(configPath)
	if err != nil {
		return domain.StateUnbuilt, err
	}
	return a.pipeline.CurrentState(cfg)
}
