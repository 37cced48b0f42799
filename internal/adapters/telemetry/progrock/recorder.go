// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.halyard.dev/halyard/internal/core/ports"
)

// Recorder implements the ports.Telemetry interface using the progrock library.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() ports.Telemetry {
	tape := progrock.NewTape()
	return NewRecorder(tape)
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	rec := progrock.NewRecorder(w)
	return &Recorder{
		w:   w,
		rec: rec,
	}
}

// Record starts recording a new vertex. The stage, when set, becomes part of
// the vertex label, and the digest covers the stage, the name, and the
// identifying inputs, so two resolve runs against different lockfiles occupy
// distinct vertexes on the tape.
func (r *Recorder) Record(ctx context.Context, name string, opts ...ports.VertexOption) (context.Context, ports.Vertex) {
	var cfg ports.VertexConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	label := name
	if cfg.Stage != "" {
		label = "[" + string(cfg.Stage) + "] " + name
	}

	d := digest.FromString(strings.Join(append([]string{label}, cfg.Inputs...), "\x00"))
	vertex := &Vertex{rec: r.rec.Vertex(d, label), stage: cfg.Stage}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
