package domain

import "go.trai.ch/zerr"

// PipelineState is the build+launch lifecycle state of an artifact.
// Build transitions are one-way and fail closed: an error leaves the state
// where it was and nothing partial is promoted.
type PipelineState string

const (
	// StateUnbuilt is the initial state: no dependency environment exists.
	StateUnbuilt PipelineState = "unbuilt"

	// StateResolved means the dependency environment is fully materialized.
	StateResolved PipelineState = "resolved"

	// StateAssembled means the runtime root is complete and owned by the
	// execution identity.
	StateAssembled PipelineState = "assembled"

	// StateRunning means the service process has been launched.
	StateRunning PipelineState = "running"
)

// transitions lists the legal forward edges of the lifecycle.
var transitions = map[PipelineState]PipelineState{
	StateUnbuilt:   StateResolved,
	StateResolved:  StateAssembled,
	StateAssembled: StateRunning,
}

// CanTransition reports whether moving from s to next is legal.
func (s PipelineState) CanTransition(next PipelineState) bool {
	return transitions[s] == next
}

// Advance returns next if the transition is legal, or ErrInvalidTransition.
func (s PipelineState) Advance(next PipelineState) (PipelineState, error) {
	if !s.CanTransition(next) {
		err := zerr.Wrap(ErrInvalidTransition, "pipeline stages must run in order")
		err = zerr.With(err, "from", string(s))
		return s, zerr.With(err, "to", string(next))
	}
	return next, nil
}
