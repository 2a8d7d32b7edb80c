package archive_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lanebuild/lane/internal/adapters/archive"
	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"github.com/lanebuild/lane/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestArchive_SortedMembersAndDeterministicMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockProcessRunner(ctrl)

	dir := t.TempDir()
	dest := filepath.Join(dir, "libkernels.a")

	runner.EXPECT().
		Run(gomock.Any(), "ar", gomock.Any(), "").
		DoAndReturn(func(_ context.Context, _ string, args []string, _ string) (ports.RunResult, error) {
			require.Equal(t, "crsD", args[0])
			tmp := args[1]
			assert.Equal(t, dir, filepath.Dir(tmp))
			// Members come after the output path, sorted.
			assert.Equal(t, []string{"a.o", "b.o", "c.o"}, args[2:])
			require.NoError(t, os.WriteFile(tmp, []byte("!<arch>\n"), 0o644))
			return ports.RunResult{}, nil
		})

	a := archive.NewForOS(runner, "linux")
	err := a.Archive(context.Background(), dest, []string{"c.o", "a.o", "b.o"})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "!<arch>\n", string(data))
}

func TestArchive_FailureLeavesPriorArchiveUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockProcessRunner(ctrl)

	dir := t.TempDir()
	dest := filepath.Join(dir, "libkernels.a")
	require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

	runner.EXPECT().
		Run(gomock.Any(), "ar", gomock.Any(), "").
		Return(ports.RunResult{ExitCode: 1, Output: []byte("ar: malformed object")}, nil)

	a := archive.NewForOS(runner, "linux")
	err := a.Archive(context.Background(), dest, []string{"a.o"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArchiveWriteFailed))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestArchive_ZeroExitWithoutOutputIsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockProcessRunner(ctrl)

	runner.EXPECT().
		Run(gomock.Any(), "ar", gomock.Any(), "").
		Return(ports.RunResult{}, nil) // exit 0 but never writes the temp file

	a := archive.NewForOS(runner, "linux")
	err := a.Archive(context.Background(), filepath.Join(t.TempDir(), "libk.a"), []string{"a.o"})
	assert.True(t, errors.Is(err, domain.ErrArchiveWriteFailed))
}

func TestArchive_NoObjectsRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockProcessRunner(ctrl)

	a := archive.NewForOS(runner, "linux")
	err := a.Archive(context.Background(), filepath.Join(t.TempDir(), "libk.a"), nil)
	assert.True(t, errors.Is(err, domain.ErrArchiveWriteFailed))
}

func TestArchive_DarwinUsesLibtool(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockProcessRunner(ctrl)

	dir := t.TempDir()
	runner.EXPECT().
		Run(gomock.Any(), "libtool", gomock.Any(), "").
		DoAndReturn(func(_ context.Context, _ string, args []string, _ string) (ports.RunResult, error) {
			require.Equal(t, "-static", args[0])
			require.Equal(t, "-o", args[1])
			require.NoError(t, os.WriteFile(args[2], []byte("!<arch>\n"), 0o644))
			return ports.RunResult{}, nil
		})

	a := archive.NewForOS(runner, "darwin")
	err := a.Archive(context.Background(), filepath.Join(dir, "libk.a"), []string{"a.o"})
	require.NoError(t, err)
}
