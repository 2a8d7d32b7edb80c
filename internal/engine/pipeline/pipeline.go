// Package pipeline runs the compile-and-aggregate pass: one compiler
// invocation per (kernel, flag set) pair, then one archive and one merged
// header from everything that was produced.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Pipeline executes a validated build configuration against a located
// compiler. It owns everything between flag resolution and the final
// archive on disk.
type Pipeline struct {
	runner   ports.ProcessRunner
	prints   ports.Fingerprinter
	stores   ports.StoreOpener
	archiver ports.Archiver
	parser   ports.HeaderParser
	merger   ports.HeaderMerger
	tasksys  ports.TaskSystemBuilder
	tel      ports.Telemetry
	logger   ports.Logger
}

// New creates a new Pipeline.
func New(
	runner ports.ProcessRunner,
	prints ports.Fingerprinter,
	stores ports.StoreOpener,
	archiver ports.Archiver,
	parser ports.HeaderParser,
	merger ports.HeaderMerger,
	tasksys ports.TaskSystemBuilder,
	tel ports.Telemetry,
	logger ports.Logger,
) *Pipeline {
	return &Pipeline{
		runner:   runner,
		prints:   prints,
		stores:   stores,
		archiver: archiver,
		parser:   parser,
		merger:   merger,
		tasksys:  tasksys,
		tel:      tel,
		logger:   logger,
	}
}

// kernelPlan is the full invocation set for one kernel source, with the
// outputs it contributes to the archive.
type kernelPlan struct {
	kernel      domain.KernelSource
	invocations []*domain.Invocation
	objects     []string
	headers     []string
}

// Run compiles every kernel against every flag set and aggregates the
// results into one archive plus one merged header. A failing invocation
// cancels the rest of its kernel's invocations; other kernels run to
// completion so one pass reports every broken kernel.
func (p *Pipeline) Run(
	ctx context.Context,
	handle *domain.CompilerHandle,
	cfg *domain.BuildConfig,
	sets []domain.FlagSet,
) (*domain.OutputArchive, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create output directory"), "dir", cfg.OutputDir)
	}

	store, err := p.stores.Open(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	plans := p.plan(handle, cfg, sets)

	if err := p.compileAll(ctx, handle, cfg, store, plans); err != nil {
		return nil, errors.Join(domain.ErrBuildFailed, err)
	}

	return p.aggregate(ctx, cfg, plans)
}

// plan expands the (kernel × flag set) grid into concrete invocations with
// their output paths. Dispatch objects get a distinct "_dispatch" stem so
// the side files the compiler emits next to them never collide with the
// variant objects being written concurrently.
func (p *Pipeline) plan(handle *domain.CompilerHandle, cfg *domain.BuildConfig, sets []domain.FlagSet) []*kernelPlan {
	plans := make([]*kernelPlan, 0, len(cfg.Kernels))

	for _, kernel := range cfg.Kernels {
		pl := &kernelPlan{kernel: kernel}

		for _, set := range sets {
			stem := kernel.Name + "_" + string(set.Variant)
			if set.Dispatch {
				stem = kernel.Name + "_dispatch"
			}

			inv := &domain.Invocation{
				Kernel:       kernel,
				Variant:      set.Variant,
				Dispatch:     set.Dispatch,
				CompilerPath: handle.Path,
				ObjectPath:   filepath.Join(cfg.OutputDir, stem+".o"),
			}

			args := append([]string{}, set.Args...)
			for _, inc := range kernel.Includes {
				args = append(args, "-I", inc)
			}
			args = append(args, "-o", inv.ObjectPath)
			if !set.Dispatch {
				inv.HeaderPath = filepath.Join(cfg.OutputDir, stem+".h")
				args = append(args, "-h", inv.HeaderPath)
			}
			args = append(args, kernel.Path)
			inv.Args = args

			pl.invocations = append(pl.invocations, inv)
			pl.objects = append(pl.objects, inv.ObjectPath)
			if inv.HeaderPath != "" {
				pl.headers = append(pl.headers, inv.HeaderPath)
			}
		}

		plans = append(plans, pl)
	}

	return plans
}

func (p *Pipeline) compileAll(
	ctx context.Context,
	handle *domain.CompilerHandle,
	cfg *domain.BuildConfig,
	store ports.BuildRecordStore,
	plans []*kernelPlan,
) error {
	limit := cfg.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	g.SetLimit(limit)

	// One failing invocation abandons the rest of its kernel, nothing else.
	failed := make(map[string]bool, len(plans))

	kernelFailed := func(name string) bool {
		mu.Lock()
		defer mu.Unlock()
		return failed[name]
	}
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed[name] = true
		errs = errors.Join(errs, err)
	}

	for _, pl := range plans {
		for _, inv := range pl.invocations {
			g.Go(func() error {
				if ctx.Err() != nil || kernelFailed(inv.Kernel.Name) {
					return nil
				}
				if err := p.compileOne(ctx, handle, store, inv); err != nil {
					record(inv.Kernel.Name, err)
				}
				return nil
			})
		}
	}

	_ = g.Wait()

	if ctx.Err() != nil {
		errs = errors.Join(errs, ctx.Err())
	}
	return errs
}

func (p *Pipeline) compileOne(
	ctx context.Context,
	handle *domain.CompilerHandle,
	store ports.BuildRecordStore,
	inv *domain.Invocation,
) error {
	ctx, vertex := p.tel.Record(ctx, "compile "+inv.Key())
	err := p.compile(ctx, vertex, handle, store, inv)
	vertex.Complete(err)
	return err
}

func (p *Pipeline) compile(
	ctx context.Context,
	vertex ports.Vertex,
	handle *domain.CompilerHandle,
	store ports.BuildRecordStore,
	inv *domain.Invocation,
) error {
	fingerprint, err := p.prints.Fingerprint(inv, handle.Version)
	if err != nil {
		return err
	}

	if p.cacheHit(store, inv, fingerprint) {
		vertex.Cached()
		return nil
	}

	res, err := p.runner.Run(ctx, inv.CompilerPath, inv.Args, inv.WorkDir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to run compiler"), "invocation", inv.Key())
	}
	_, _ = vertex.Stdout().Write(res.Output)

	if res.ExitCode != 0 {
		// Metadata is not rendered by Error(); the captured output has to
		// ride in the message to reach the joined build error.
		failed := zerr.With(zerr.Wrap(domain.ErrCompilationFailed, strings.TrimSpace(string(res.Output))), "kernel", inv.Kernel.Name)
		failed = zerr.With(failed, "variant", variantLabel(inv))
		return zerr.With(failed, "exit_code", res.ExitCode)
	}

	for _, out := range []string{inv.ObjectPath, inv.HeaderPath} {
		if out == "" {
			continue
		}
		if _, err := os.Stat(out); err != nil {
			violation := zerr.Wrap(domain.ErrToolchainContractViolation, "compiler exited zero without producing the file")
			violation = zerr.With(violation, "invocation", inv.Key())
			return zerr.With(violation, "missing", out)
		}
	}

	if err := store.Put(domain.BuildRecord{
		Key:         inv.Key(),
		InputHash:   fingerprint,
		ObjectPath:  inv.ObjectPath,
		HeaderPath:  inv.HeaderPath,
		CompilerVer: handle.Version.String(),
	}); err != nil {
		// A dead cache only costs rebuilds.
		p.logger.Warn(fmt.Sprintf("failed to record build state for %s: %v", inv.Key(), err))
	}

	return nil
}

// cacheHit reports whether the stored record matches the fingerprint and
// every expected output still exists on disk.
func (p *Pipeline) cacheHit(store ports.BuildRecordStore, inv *domain.Invocation, fingerprint string) bool {
	record, err := store.Get(inv.Key())
	if err != nil || record == nil || record.InputHash != fingerprint {
		return false
	}
	for _, out := range []string{inv.ObjectPath, inv.HeaderPath} {
		if out == "" {
			continue
		}
		if _, err := os.Stat(out); err != nil {
			return false
		}
	}
	return true
}

// aggregate parses and merges the emitted headers, then writes the archive
// and the merged header. Merging runs first so a duplicate symbol aborts the
// pass before anything durable is touched.
func (p *Pipeline) aggregate(ctx context.Context, cfg *domain.BuildConfig, plans []*kernelPlan) (*domain.OutputArchive, error) {
	artifacts := make([]domain.CompiledArtifact, 0, len(plans))
	objects := make([]string, 0, len(plans)*2)

	for _, pl := range plans {
		var decls []domain.FunctionDecl
		for _, headerPath := range pl.headers {
			parsed, err := p.parser.ParseFile(headerPath, pl.kernel.Name)
			if err != nil {
				return nil, err
			}
			decls = append(decls, parsed...)
		}
		artifacts = append(artifacts, domain.CompiledArtifact{
			Kernel:     pl.kernel,
			Objects:    pl.objects,
			HeaderPath: pl.headers[0],
			Decls:      decls,
		})
		objects = append(objects, pl.objects...)
	}

	merged, err := p.merger.Merge(artifacts)
	if err != nil {
		return nil, err
	}

	if cfg.TaskSystem {
		_, vertex := p.tel.Record(ctx, "compile tasksys")
		obj, err := p.tasksys.Compile(ctx, cfg.OutputDir, cfg.Target.Debug)
		vertex.Complete(err)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	dest := filepath.Join(cfg.OutputDir, cfg.ArchiveFile())
	archiveCtx, vertex := p.tel.Record(ctx, "archive "+cfg.ArchiveFile())
	err = p.archiver.Archive(archiveCtx, dest, objects)
	vertex.Complete(err)
	if err != nil {
		return nil, err
	}

	headerPath := filepath.Join(cfg.OutputDir, cfg.ArchiveName+".h")
	if err := writeAtomic(headerPath, p.merger.Render(cfg.ArchiveName, merged)); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrArchiveWriteFailed, err.Error()), "path", headerPath)
	}

	return &domain.OutputArchive{
		Path:       dest,
		HeaderPath: headerPath,
		LibName:    cfg.ArchiveName,
		Decls:      merged,
	}, nil
}

// writeAtomic writes via a temp file and rename so a partial write never
// replaces an intact previous output.
func writeAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // Generated header is world-readable
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func variantLabel(inv *domain.Invocation) string {
	if inv.Dispatch {
		return "dispatch"
	}
	return string(inv.Variant)
}
