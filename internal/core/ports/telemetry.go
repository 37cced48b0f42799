package ports

import (
	"context"
	"io"

	"go.halyard.dev/halyard/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records units of work (pipeline stages, process launches) for
// progress reporting.
type Telemetry interface {
	// Record starts recording a new vertex.
	Record(ctx context.Context, name string, opts ...VertexOption) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer to capture standard output stream.
	Stdout() io.Writer
	// Stderr returns a writer to capture error output stream.
	Stderr() io.Writer
	// Log records a structured log message associated with this vertex.
	Log(level domain.LogLevel, msg string)
	// Complete marks the vertex as finished (successfully or with an error).
	Complete(err error)
	// Cached marks the vertex as a cache hit.
	Cached()
}

// VertexConfig holds configuration for a starting vertex.
type VertexConfig struct {
	// Stage attributes the vertex to a pipeline lifecycle stage.
	Stage domain.PipelineState

	// Inputs identify what the vertex operates on, e.g. the lockfile a
	// resolve run is pinned to or the output path an assembly targets.
	// Vertexes with different inputs stay distinct on the tape.
	Inputs []string
}

// VertexOption is a functional option for configuring a vertex.
type VertexOption func(*VertexConfig)

// WithStage attributes the vertex to the pipeline stage it advances toward.
func WithStage(stage domain.PipelineState) VertexOption {
	return func(c *VertexConfig) { c.Stage = stage }
}

// WithInput adds an identifying input to the vertex.
func WithInput(input string) VertexOption {
	return func(c *VertexConfig) { c.Inputs = append(c.Inputs, input) }
}

type vertexCtxKey struct{}

// ContextWithVertex returns a context carrying the given vertex.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexCtxKey{}, v)
}

// VertexFromContext returns the vertex carried by the context, or nil.
func VertexFromContext(ctx context.Context) Vertex {
	v, _ := ctx.Value(vertexCtxKey{}).(Vertex)
	return v
}
