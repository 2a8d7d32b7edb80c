// Package app implements the application layer for lane.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// BuildPipeline is the engine surface the app drives: compile everything,
// hand back the archive.
type BuildPipeline interface {
	Run(ctx context.Context, handle *domain.CompilerHandle, cfg *domain.BuildConfig, sets []domain.FlagSet) (*domain.OutputArchive, error)
}

// Overrides are the CLI flags that take precedence over the manifest.
type Overrides struct {
	Compiler    string
	OutputDir   string
	Parallelism int
	TaskSystem  bool
}

// App represents the main application logic.
type App struct {
	loader   ports.ConfigLoader
	locator  ports.CompilerLocator
	resolver ports.TargetResolver
	pipeline BuildPipeline
	binder   ports.BindingGenerator
	logger   ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	locator ports.CompilerLocator,
	resolver ports.TargetResolver,
	pipeline BuildPipeline,
	binder ports.BindingGenerator,
	logger ports.Logger,
) *App {
	return &App{
		loader:   loader,
		locator:  locator,
		resolver: resolver,
		pipeline: pipeline,
		binder:   binder,
		logger:   logger,
	}
}

// Build runs the full pass: manifest, compiler, flag resolution, compile,
// archive, bindings. It returns the produced archive on success.
func (a *App) Build(ctx context.Context, configPath string, overrides Overrides) (*domain.OutputArchive, error) {
	cfg, err := a.loadConfig(configPath, overrides)
	if err != nil {
		return nil, err
	}

	handle, err := a.locator.Locate(ctx, cfg.CompilerOverride)
	if err != nil {
		return nil, err
	}
	a.logger.Info(fmt.Sprintf("using compiler %s (%s)", handle.Path, handle.Version))

	sets, err := a.resolver.Resolve(handle, cfg.Target)
	if err != nil {
		return nil, err
	}

	archive, err := a.pipeline.Run(ctx, handle, cfg, sets)
	if err != nil {
		return nil, err
	}

	source, err := a.binder.Generate(*archive, cfg.BindingPackage)
	if err != nil {
		return nil, err
	}
	bindingPath := filepath.Join(cfg.OutputDir, cfg.BindingPackage+".go")
	if err := os.WriteFile(bindingPath, source, 0o644); err != nil { //nolint:gosec // Generated source is world-readable
		return nil, zerr.With(zerr.Wrap(err, "failed to write bindings"), "path", bindingPath)
	}

	a.logger.Info(fmt.Sprintf("wrote %s", archive.Path))
	a.logger.Info(fmt.Sprintf("wrote %s", bindingPath))
	a.logger.Info(fmt.Sprintf("link with: -L%s -l%s", cfg.OutputDir, archive.LibName))

	return archive, nil
}

// Probe locates the compiler the build would use and returns its handle
// without compiling anything.
func (a *App) Probe(ctx context.Context, configPath string, overrides Overrides) (*domain.CompilerHandle, *domain.BuildConfig, error) {
	cfg, err := a.loadConfig(configPath, overrides)
	if err != nil {
		return nil, nil, err
	}

	handle, err := a.locator.Locate(ctx, cfg.CompilerOverride)
	if err != nil {
		return nil, nil, err
	}
	return handle, cfg, nil
}

// Clean removes the build output directory, cached state included.
func (a *App) Clean(configPath string, overrides Overrides) error {
	cfg, err := a.loadConfig(configPath, overrides)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove output directory"), "dir", cfg.OutputDir)
	}
	a.logger.Info(fmt.Sprintf("removed %s", cfg.OutputDir))
	return nil
}

func (a *App) loadConfig(configPath string, overrides Overrides) (*domain.BuildConfig, error) {
	cfg, err := a.loader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if overrides.Compiler != "" {
		cfg.CompilerOverride = overrides.Compiler
	}
	if overrides.OutputDir != "" {
		cfg.OutputDir = overrides.OutputDir
	}
	if overrides.Parallelism > 0 {
		cfg.Parallelism = overrides.Parallelism
	}
	if overrides.TaskSystem {
		cfg.TaskSystem = true
	}

	return cfg, nil
}
