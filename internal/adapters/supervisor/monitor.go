package supervisor

import (
	"context"
	"sync"
	"time"

	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
)

// Monitor drives the liveness probe on the policy's schedule: an initial
// grace period, then one check per interval, each bounded by the policy
// timeout. Consecutive failures beyond the retry budget mark the instance
// unhealthy, which is terminal; remediation belongs to the orchestrator, not
// to the monitor.
type Monitor struct {
	prober ports.Prober
	policy domain.ProbePolicy
	logger ports.Logger

	mu       sync.RWMutex
	state    domain.HealthState
	failures int
}

// NewMonitor creates a Monitor for the given prober and policy.
func NewMonitor(prober ports.Prober, policy domain.ProbePolicy, logger ports.Logger) *Monitor {
	return &Monitor{
		prober: prober,
		policy: policy.Normalized(),
		logger: logger,
		state:  domain.HealthHealthy,
	}
}

// State returns the current health state.
func (m *Monitor) State() domain.HealthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Run blocks, probing until the context is canceled or the retry budget is
// exhausted. Returns nil on cancellation and ErrUnhealthy once the instance
// is terminal.
func (m *Monitor) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(m.policy.Grace):
	}

	ticker := time.NewTicker(m.policy.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if unhealthy := m.step(ctx); unhealthy {
				return zerr.With(zerr.Wrap(domain.ErrUnhealthy, "probe retry budget exhausted"),
					"consecutive_failures", m.failures)
			}
		}
	}
}

// CheckOnce runs a single bounded probe invocation without touching the
// failure budget.
func (m *Monitor) CheckOnce(ctx context.Context) error {
	return m.check(ctx)
}

// step runs one probe invocation and updates the failure counter.
// Returns true once the instance is unhealthy.
func (m *Monitor) step(ctx context.Context) bool {
	err := m.check(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		// A single success resets the budget.
		m.failures = 0
		m.state = domain.HealthHealthy
		return false
	}

	m.failures++
	m.logger.Warn("liveness probe failed: " + err.Error())

	if m.failures >= m.policy.Retries {
		m.state = domain.HealthUnhealthy
		return true
	}
	return false
}

// check runs a single probe bounded by the policy timeout. A prober that
// ignores context cancellation still counts as failed once the deadline
// passes; its goroutine is abandoned rather than waited on.
func (m *Monitor) check(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, m.policy.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.prober.Check(checkCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-checkCtx.Done():
		return zerr.With(domain.ErrProbeTimeout, "timeout", m.policy.Timeout.String())
	}
}
