package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.halyard.dev/halyard/internal/adapters/telemetry"
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
)

func TestNoOp(t *testing.T) {
	rec := telemetry.NewNoOp()

	ctx, vtx := rec.Record(context.Background(), "resolve dependencies")
	require.NotNil(t, vtx)

	// The vertex travels on the context for process output capture.
	assert.Equal(t, vtx, ports.VertexFromContext(ctx))

	// All operations are safe no-ops.
	_, err := vtx.Stdout().Write([]byte("out"))
	require.NoError(t, err)
	_, err = vtx.Stderr().Write([]byte("err"))
	require.NoError(t, err)
	vtx.Log(domain.LogLevelInfo, "msg")
	vtx.Cached()
	vtx.Complete(nil)

	require.NoError(t, rec.Close())
}

func TestVertexFromContext_Absent(t *testing.T) {
	assert.Nil(t, ports.VertexFromContext(context.Background()))
}
