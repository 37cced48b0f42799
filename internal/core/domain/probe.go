package domain

import "time"

// Default liveness probe schedule, mirroring the orchestrator-side health
// check the pipeline was designed against.
const (
	DefaultProbeInterval = 60 * time.Second
	DefaultProbeGrace    = 30 * time.Second
	DefaultProbeTimeout  = 10 * time.Second
	DefaultProbeRetries  = 3
)

// ProbePolicy describes when and how often the liveness probe runs.
type ProbePolicy struct {
	// Interval between probe invocations once the grace period has passed.
	Interval time.Duration

	// Grace is the initial startup period during which no probe runs.
	Grace time.Duration

	// Timeout bounds a single probe invocation; exceeding it counts as a
	// failure.
	Timeout time.Duration

	// Retries is the budget of consecutive failures tolerated before the
	// instance is declared unhealthy.
	Retries int

	// Command, when set, is executed as the probe check. When empty the
	// probe is the stub always-success check; replacing it with a real
	// readiness command is the intended extension point.
	Command []string
}

// Normalized returns the policy with zero fields replaced by defaults.
func (p ProbePolicy) Normalized() ProbePolicy {
	if p.Interval <= 0 {
		p.Interval = DefaultProbeInterval
	}
	if p.Grace <= 0 {
		p.Grace = DefaultProbeGrace
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultProbeTimeout
	}
	if p.Retries <= 0 {
		p.Retries = DefaultProbeRetries
	}
	return p
}

// HealthState is the probe-driven state of a running instance.
type HealthState string

const (
	// HealthHealthy means the probe is passing (or still within its retry
	// budget).
	HealthHealthy HealthState = "healthy"

	// HealthUnhealthy means the retry budget is exhausted. Terminal for this
	// instance; remediation is external.
	HealthUnhealthy HealthState = "unhealthy"
)
