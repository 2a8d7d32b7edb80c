package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultManifest)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFullManifest(t *testing.T) {
	path := writeManifest(t, `
version: "1"
compiler: /opt/ispc/bin/ispc
output: out
archive: grid
package: gridkern
parallelism: 4
tasksys: true
target:
  arch: x86-64
  addressing: 64
  variants: [sse4, avx2-i32x8]
  opt: 3
  pic: true
  math: fast
  defines:
    GRID_W: "128"
    TRACE: ""
  includes: [shared]
kernels:
  - name: grid
    path: kernels/grid.ispc
    includes: [kernels/common]
  - path: kernels/scan.ispc
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/ispc/bin/ispc", cfg.CompilerOverride)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "grid", cfg.ArchiveName)
	assert.Equal(t, "gridkern", cfg.BindingPackage)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.True(t, cfg.TaskSystem)

	assert.Equal(t, domain.ArchX86_64, cfg.Target.Arch)
	assert.Equal(t, domain.Addr64, cfg.Target.Addressing)
	assert.Equal(t, []domain.ISAVariant{"sse4", "avx2-i32x8"}, cfg.Target.Variants)
	assert.Equal(t, 3, cfg.Target.OptLevel)
	assert.True(t, cfg.Target.PIC)
	assert.Equal(t, domain.MathFast, cfg.Target.Math)
	// Defines come back sorted by key regardless of map iteration order.
	assert.Equal(t, []domain.Define{
		{Key: "GRID_W", Value: "128"},
		{Key: "TRACE"},
	}, cfg.Target.Defines)

	base := filepath.Dir(path)
	require.Len(t, cfg.Kernels, 2)
	assert.Equal(t, "grid", cfg.Kernels[0].Name)
	assert.Equal(t, filepath.Join(base, "kernels/grid.ispc"), cfg.Kernels[0].Path)
	assert.Equal(t, []string{filepath.Join(base, "kernels/common")}, cfg.Kernels[0].Includes)
	// A kernel without an explicit name takes its file stem.
	assert.Equal(t, "scan", cfg.Kernels[1].Name)
}

func TestLoadDefaults(t *testing.T) {
	path := writeManifest(t, `
kernels:
  - path: scan.ispc
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "build", cfg.OutputDir)
	assert.Equal(t, "kernels", cfg.ArchiveName)
	assert.Equal(t, "kernels", cfg.BindingPackage)
	assert.Equal(t, domain.Addr32, cfg.Target.Addressing)
	assert.Equal(t, 2, cfg.Target.OptLevel)
	assert.NotEmpty(t, cfg.Target.Variants)
}

func TestLoadDebugDefaultsOptZero(t *testing.T) {
	path := writeManifest(t, `
target:
  debug: true
kernels:
  - path: scan.ispc
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Target.Debug)
	assert.Equal(t, 0, cfg.Target.OptLevel)
}

func TestLoadNoKernels(t *testing.T) {
	path := writeManifest(t, `
target:
  variants: [avx2]
`)

	_, err := NewLoader().Load(path)
	require.ErrorIs(t, err, domain.ErrNoKernels)
}

func TestLoadDuplicateKernelName(t *testing.T) {
	path := writeManifest(t, `
kernels:
  - path: a/scan.ispc
  - path: b/scan.ispc
`)

	_, err := NewLoader().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kernel name used twice")
}

func TestLoadKernelMissingPath(t *testing.T) {
	path := writeManifest(t, `
kernels:
  - name: scan
`)

	_, err := NewLoader().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing path")
}

func TestLoadNegativeParallelism(t *testing.T) {
	path := writeManifest(t, `
parallelism: -1
kernels:
  - path: scan.ispc
`)

	_, err := NewLoader().Load(path)
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeManifest(t, "kernels: [}{")

	_, err := NewLoader().Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadAbsoluteKernelPathKept(t *testing.T) {
	path := writeManifest(t, `
kernels:
  - path: /abs/scan.ispc
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/abs/scan.ispc", cfg.Kernels[0].Path)
}
