package progrock_test

import (
	"context"
	"testing"

	"github.com/lanebuild/lane/internal/adapters/telemetry/progrock"
	"github.com/lanebuild/lane/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorderLifecycle(t *testing.T) {
	recorder := progrock.New()

	ctx, vertex := recorder.Record(context.Background(), "compile scan@avx2")

	_, err := vertex.Stdout().Write([]byte("warning: something minor\n"))
	require.NoError(t, err)

	// The vertex is retrievable from the returned context for downstream use.
	got, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, got)

	vertex.Complete(nil)
	require.NoError(t, recorder.Close())
}

func TestRecorderCachedVertex(t *testing.T) {
	recorder := progrock.New()

	_, vertex := recorder.Record(context.Background(), "compile scan@sse2")
	vertex.Cached()
	vertex.Complete(nil)

	require.NoError(t, recorder.Close())
}
