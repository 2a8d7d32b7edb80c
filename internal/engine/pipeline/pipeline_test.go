package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lanebuild/lane/internal/adapters/cache"
	"github.com/lanebuild/lane/internal/adapters/fs"
	"github.com/lanebuild/lane/internal/adapters/header"
	"github.com/lanebuild/lane/internal/adapters/telemetry"
	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner scripts compiler behavior per invocation and records every call.
type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	handler func(path string, args []string) (ports.RunResult, error)
}

func (f *fakeRunner) Run(_ context.Context, path string, args []string, _ string) (ports.RunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{path}, args...))
	f.mu.Unlock()
	return f.handler(path, args)
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeArchiver struct {
	mu      sync.Mutex
	calls   int
	objects []string
	err     error
}

func (f *fakeArchiver) Archive(_ context.Context, dest string, objects []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.objects = append([]string{}, objects...)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("!<arch>\n"), 0o644)
}

type fakeTaskSys struct {
	object string
	err    error
}

func (f *fakeTaskSys) Compile(_ context.Context, dir string, _ bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	obj := filepath.Join(dir, f.object)
	if err := os.WriteFile(obj, []byte("obj"), 0o644); err != nil {
		return "", err
	}
	return obj, nil
}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

// emulateCompiler produces a handler that behaves like a well-behaved
// compiler: it writes the object named by -o and, when -h is present, the
// given header text.
func emulateCompiler(t *testing.T, headerText string) func(string, []string) (ports.RunResult, error) {
	t.Helper()
	return func(_ string, args []string) (ports.RunResult, error) {
		for i, arg := range args {
			switch arg {
			case "-o":
				require.NoError(t, os.WriteFile(args[i+1], []byte("obj"), 0o644))
			case "-h":
				require.NoError(t, os.WriteFile(args[i+1], []byte(headerText), 0o644))
			}
		}
		return ports.RunResult{ExitCode: 0}, nil
	}
}

const scanHeader = `
#ifdef __cplusplus
extern "C" {
#endif
    extern void scan(float * input, float * output, uint32_t count);
#ifdef __cplusplus
}
#endif
`

func newPipeline(runner ports.ProcessRunner, archiver ports.Archiver, tasksys ports.TaskSystemBuilder) *Pipeline {
	return New(
		runner,
		fs.NewHasher(),
		cache.NewOpener(),
		archiver,
		header.NewParser(),
		header.NewMerger(),
		tasksys,
		telemetry.NewNoOp(),
		nopLogger{},
	)
}

func testHandle() *domain.CompilerHandle {
	return &domain.CompilerHandle{
		Path:    "/usr/bin/ispc",
		Version: domain.CompilerVersion{Major: 1, Minor: 21},
	}
}

func multiVariantSets() []domain.FlagSet {
	return []domain.FlagSet{
		{Variant: "sse2", Args: []string{"--target=sse2"}},
		{Variant: "avx2", Args: []string{"--target=avx2"}},
		{Dispatch: true, Args: []string{"--target=sse2,avx2"}},
	}
}

func testConfig(t *testing.T, kernels ...string) *domain.BuildConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := &domain.BuildConfig{
		OutputDir:      filepath.Join(dir, "build"),
		ArchiveName:    "kernels",
		BindingPackage: "kernels",
		Parallelism:    1,
	}
	for _, name := range kernels {
		path := filepath.Join(dir, name+".ispc")
		require.NoError(t, os.WriteFile(path, []byte("export void "+name+"() {}\n"), 0o644))
		cfg.Kernels = append(cfg.Kernels, domain.KernelSource{Name: name, Path: path})
	}
	return cfg
}

func TestRunMultiVariant(t *testing.T) {
	runner := &fakeRunner{handler: emulateCompiler(t, scanHeader)}
	archiver := &fakeArchiver{}
	cfg := testConfig(t, "scan")

	p := newPipeline(runner, archiver, &fakeTaskSys{})
	out, err := p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.NoError(t, err)

	// Two variants plus the dispatch object: three invocations.
	assert.Equal(t, 3, runner.callCount())

	// The archive gets every object, dispatch included.
	assert.Equal(t, 1, archiver.calls)
	assert.ElementsMatch(t, []string{
		filepath.Join(cfg.OutputDir, "scan_sse2.o"),
		filepath.Join(cfg.OutputDir, "scan_avx2.o"),
		filepath.Join(cfg.OutputDir, "scan_dispatch.o"),
	}, archiver.objects)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "libkernels.a"), out.Path)
	assert.Equal(t, "kernels", out.LibName)
	require.Len(t, out.Decls, 1)
	assert.Equal(t, "scan", out.Decls[0].Name)

	// The merged header landed next to the archive.
	data, err := os.ReadFile(out.HeaderPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "void scan(float *input, float *output, uint32_t count);")
}

func TestRunFailureCancelsKernelButNotOthers(t *testing.T) {
	cfg := testConfig(t, "broken", "fine")

	runner := &fakeRunner{}
	good := emulateCompiler(t, scanHeader)
	runner.handler = func(path string, args []string) (ports.RunResult, error) {
		for _, arg := range args {
			if filepath.Base(arg) == "broken.ispc" {
				return ports.RunResult{ExitCode: 1, Output: []byte("syntax error")}, nil
			}
		}
		return good(path, args)
	}
	archiver := &fakeArchiver{}

	p := newPipeline(runner, archiver, &fakeTaskSys{})
	_, err := p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.ErrorIs(t, err, domain.ErrCompilationFailed)
	assert.Contains(t, err.Error(), "syntax error")

	// With serial execution the broken kernel stops after its first
	// invocation while the healthy one runs all three of its own.
	assert.Equal(t, 4, runner.callCount())

	// Nothing durable is written on a failed pass.
	assert.Equal(t, 0, archiver.calls)
}

func TestRunContractViolation(t *testing.T) {
	cfg := testConfig(t, "scan")

	// Exits zero but never writes the promised object file.
	runner := &fakeRunner{handler: func(_ string, args []string) (ports.RunResult, error) {
		for i, arg := range args {
			if arg == "-h" {
				require.NoError(t, os.WriteFile(args[i+1], []byte(scanHeader), 0o644))
			}
		}
		return ports.RunResult{ExitCode: 0}, nil
	}}
	archiver := &fakeArchiver{}

	p := newPipeline(runner, archiver, &fakeTaskSys{})
	_, err := p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrToolchainContractViolation)
	assert.Equal(t, 0, archiver.calls)
}

func TestRunDuplicateSymbolBlocksArchive(t *testing.T) {
	// Two kernels both exporting "scan".
	cfg := testConfig(t, "alpha", "beta")

	runner := &fakeRunner{handler: emulateCompiler(t, scanHeader)}
	archiver := &fakeArchiver{}

	p := newPipeline(runner, archiver, &fakeTaskSys{})
	_, err := p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateSymbol)
	assert.Equal(t, 0, archiver.calls)
}

func TestRunCacheSkipsUnchangedInvocations(t *testing.T) {
	cfg := testConfig(t, "scan")
	runner := &fakeRunner{handler: emulateCompiler(t, scanHeader)}

	p := newPipeline(runner, &fakeArchiver{}, &fakeTaskSys{})

	_, err := p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.NoError(t, err)
	require.Equal(t, 3, runner.callCount())

	// Second pass over identical inputs compiles nothing.
	_, err = p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.NoError(t, err)
	assert.Equal(t, 3, runner.callCount())
}

func TestRunCacheInvalidatedBySourceChange(t *testing.T) {
	cfg := testConfig(t, "scan")
	runner := &fakeRunner{handler: emulateCompiler(t, scanHeader)}

	p := newPipeline(runner, &fakeArchiver{}, &fakeTaskSys{})

	_, err := p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.NoError(t, err)
	require.Equal(t, 3, runner.callCount())

	require.NoError(t, os.WriteFile(cfg.Kernels[0].Path, []byte("export void scan(uniform int n) {}\n"), 0o644))

	_, err = p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.NoError(t, err)
	assert.Equal(t, 6, runner.callCount())
}

func TestRunTaskSystemObjectArchived(t *testing.T) {
	cfg := testConfig(t, "scan")
	cfg.TaskSystem = true

	runner := &fakeRunner{handler: emulateCompiler(t, scanHeader)}
	archiver := &fakeArchiver{}

	p := newPipeline(runner, archiver, &fakeTaskSys{object: "lane_tasksys.o"})
	_, err := p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.NoError(t, err)

	assert.Contains(t, archiver.objects, filepath.Join(cfg.OutputDir, "lane_tasksys.o"))
}

func TestRunArchiveFailureSurfaces(t *testing.T) {
	cfg := testConfig(t, "scan")
	runner := &fakeRunner{handler: emulateCompiler(t, scanHeader)}
	archiver := &fakeArchiver{err: fmt.Errorf("disk full")}

	p := newPipeline(runner, archiver, &fakeTaskSys{})
	_, err := p.Run(context.Background(), testHandle(), cfg, multiVariantSets())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRunSingleVariantNoDispatch(t *testing.T) {
	cfg := testConfig(t, "scan")
	runner := &fakeRunner{handler: emulateCompiler(t, scanHeader)}
	archiver := &fakeArchiver{}

	sets := []domain.FlagSet{{Variant: "avx2", Args: []string{"--target=avx2"}}}

	p := newPipeline(runner, archiver, &fakeTaskSys{})
	_, err := p.Run(context.Background(), testHandle(), cfg, sets)
	require.NoError(t, err)

	assert.Equal(t, 1, runner.callCount())
	assert.Equal(t, []string{filepath.Join(cfg.OutputDir, "scan_avx2.o")}, archiver.objects)
}
