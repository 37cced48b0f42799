package progrock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vitoprogrock "github.com/vito/progrock"
	"go.halyard.dev/halyard/internal/adapters/telemetry/progrock"
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
)

// captureWriter records every status update pushed onto the tape.
type captureWriter struct {
	mu      sync.Mutex
	updates []*vitoprogrock.StatusUpdate
}

func (w *captureWriter) WriteStatus(status *vitoprogrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updates = append(w.updates, status)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func (w *captureWriter) vertexes() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	seen := make(map[string]string)
	for _, update := range w.updates {
		for _, v := range update.Vertexes {
			seen[v.Id] = v.Name
		}
	}
	return seen
}

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_StageLabel(t *testing.T) {
	writer := &captureWriter{}
	recorder := progrock.NewRecorder(writer)

	ctx, vtx := recorder.Record(context.Background(), "resolve dependencies",
		ports.WithStage(domain.StateResolved), ports.WithInput("halyard.lock"))
	assert.Equal(t, vtx, ports.VertexFromContext(ctx))

	vtx.Complete(nil)
	require.NoError(t, recorder.Close())

	names := writer.vertexes()
	require.Len(t, names, 1)
	for _, name := range names {
		assert.Equal(t, "[resolved] resolve dependencies", name)
	}
}

func TestRecorder_DistinctInputsStayDistinct(t *testing.T) {
	writer := &captureWriter{}
	recorder := progrock.NewRecorder(writer)

	_, a := recorder.Record(context.Background(), "resolve dependencies",
		ports.WithStage(domain.StateResolved), ports.WithInput("service-a.lock"))
	_, b := recorder.Record(context.Background(), "resolve dependencies",
		ports.WithStage(domain.StateResolved), ports.WithInput("service-b.lock"))
	a.Complete(nil)
	b.Complete(nil)
	require.NoError(t, recorder.Close())

	assert.Len(t, writer.vertexes(), 2, "different inputs must occupy different vertexes")
}

func TestRecorder_Integration(t *testing.T) {
	recorder := progrock.New()

	ctx := context.Background()
	_, vertex := recorder.Record(ctx, "assemble runtime root",
		ports.WithStage(domain.StateAssembled))

	_, err := vertex.Stdout().Write([]byte("copied application source\n"))
	require.NoError(t, err)

	vertex.Log(domain.LogLevelDebug, "runtime root promoted")
	vertex.Cached()
	vertex.Complete(nil)

	require.NoError(t, recorder.Close())
}
