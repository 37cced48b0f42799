package supervisor

import (
	"context"

	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
)

var (
	_ ports.Prober = (*StubProbe)(nil)
	_ ports.Prober = (*CommandProbe)(nil)
)

// StubProbe is the minimal liveness contract: it always succeeds. It answers
// "is the process alive" and nothing more; a real deployment should swap in a
// check against actual service readiness.
type StubProbe struct{}

// NewStubProbe creates a new StubProbe.
func NewStubProbe() *StubProbe {
	return &StubProbe{}
}

// Check always succeeds.
func (p *StubProbe) Check(context.Context) error {
	return nil
}

// CommandProbe runs a configured command as the liveness check; a zero exit
// is success. This is the extension point for service-specific readiness.
type CommandProbe struct {
	command  []string
	executor ports.Executor
}

// NewCommandProbe creates a CommandProbe running the given command.
func NewCommandProbe(command []string, executor ports.Executor) *CommandProbe {
	return &CommandProbe{
		command:  command,
		executor: executor,
	}
}

// Check runs the probe command.
func (p *CommandProbe) Check(ctx context.Context) error {
	return p.executor.Execute(ctx, p.command, "", nil)
}

// ProbeFor returns the prober a policy asks for: the configured command when
// one is set, the stub otherwise.
func ProbeFor(policy domain.ProbePolicy, executor ports.Executor) ports.Prober {
	if len(policy.Command) > 0 {
		return NewCommandProbe(policy.Command, executor)
	}
	return NewStubProbe()
}
