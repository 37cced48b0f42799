package progrock

import (
	"fmt"
	"io"

	"github.com/vito/progrock"
	"go.halyard.dev/halyard/internal/core/domain"
)

// Vertex is one recorded unit of pipeline work on the progrock tape,
// attributed to the lifecycle stage it advances toward.
type Vertex struct {
	rec   *progrock.VertexRecorder
	stage domain.PipelineState
}

// Stdout returns a writer to capture standard output stream.
func (v *Vertex) Stdout() io.Writer {
	return v.rec.Stdout()
}

// Stderr returns a writer to capture error output stream.
func (v *Vertex) Stderr() io.Writer {
	return v.rec.Stderr()
}

// Log records a message on the vertex output, attributed to its stage.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	if v.stage != "" {
		_, _ = fmt.Fprintf(v.rec.Stdout(), "[%s] %s: %s\n", level.String(), v.stage, msg)
		return
	}
	_, _ = fmt.Fprintf(v.rec.Stdout(), "[%s] %s\n", level.String(), msg)
}

// Complete marks the vertex as finished (successfully or with an error).
func (v *Vertex) Complete(err error) {
	v.rec.Done(err)
}

// Cached marks the vertex as reused from a previous run.
func (v *Vertex) Cached() {
	v.rec.Cached()
}
