package locator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lanebuild/lane/internal/adapters/locator"
	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"github.com/lanebuild/lane/internal/core/ports/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

// fakeCompiler writes an executable stub at dir/name and returns its path.
func fakeCompiler(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestLocate_OverrideProbedAndVersionParsed(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := fakeCompiler(t, t.TempDir(), "ispc")

	runner := mocks.NewMockProcessRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), path, []string{"--version"}, "").
		Return(ports.RunResult{
			Output: []byte("Intel(R) Implicit SPMD Program Compiler (ispc), 1.21.0 (build commit deadbeef)\n"),
		}, nil)

	l := locator.New(runner, quietLogger(ctrl))
	handle, err := l.Locate(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, path, handle.Path)
	require.Equal(t, "1.21.0", handle.Version.String())
	require.True(t, handle.Capabilities.SupportsVariant(domain.ArchX86_64, domain.VariantAVX2))
	require.True(t, handle.Capabilities.SupportsAddressing(domain.Addr64))
}

func TestLocate_MissingEverywhereListsSearchedLocations(t *testing.T) {
	ctrl := gomock.NewController(t)

	// No override, empty PATH dir, unset ISPC: zero probe invocations.
	runner := mocks.NewMockProcessRunner(ctrl)
	t.Setenv("ISPC", "")
	t.Setenv("PATH", t.TempDir())

	l := locator.New(runner, quietLogger(ctrl))
	_, err := l.Locate(context.Background(), "")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrCompilerNotFound))
	require.Contains(t, err.Error(), "compiler not found")
}

func TestLocate_EnvVariableWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := fakeCompiler(t, t.TempDir(), "my-ispc")
	t.Setenv("ISPC", path)

	runner := mocks.NewMockProcessRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), path, []string{"--version"}, "").
		Return(ports.RunResult{Output: []byte("ispc, 1.18.1\n")}, nil)

	l := locator.New(runner, quietLogger(ctrl))
	handle, err := l.Locate(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "1.18.1", handle.Version.String())
}

func TestLocate_TooOldVersionRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := fakeCompiler(t, t.TempDir(), "ispc")

	runner := mocks.NewMockProcessRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), path, []string{"--version"}, "").
		Return(ports.RunResult{Output: []byte("ispc, 1.8.2\n")}, nil)

	l := locator.New(runner, quietLogger(ctrl))
	_, err := l.Locate(context.Background(), path)
	require.True(t, errors.Is(err, domain.ErrCompilerVersionUnsupported))
}

func TestLocate_GarbageBannerRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := fakeCompiler(t, t.TempDir(), "ispc")

	runner := mocks.NewMockProcessRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), path, []string{"--version"}, "").
		Return(ports.RunResult{Output: []byte("not a compiler\n")}, nil)

	l := locator.New(runner, quietLogger(ctrl))
	_, err := l.Locate(context.Background(), path)
	require.True(t, errors.Is(err, domain.ErrCompilerVersionUnsupported))
}

func TestLocate_OldCompilerLacksAVX512(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := fakeCompiler(t, t.TempDir(), "ispc")

	runner := mocks.NewMockProcessRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), path, []string{"--version"}, "").
		Return(ports.RunResult{Output: []byte("ispc, 1.12.0\n")}, nil)

	l := locator.New(runner, quietLogger(ctrl))
	handle, err := l.Locate(context.Background(), path)
	require.NoError(t, err)
	require.False(t, handle.Capabilities.SupportsVariant(domain.ArchX86_64, domain.VariantAVX512))
	require.True(t, handle.Capabilities.SupportsVariant(domain.ArchX86_64, domain.VariantSSE2))
}
