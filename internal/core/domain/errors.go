package domain

import "go.trai.ch/zerr"

var (
	// ErrResolution is returned when the manifest/lock pair is missing, inconsistent,
	// or a locked package fails integrity verification. It aborts the build.
	ErrResolution = zerr.New("dependency resolution failed")

	// ErrAssembly is returned when the dependency environment handed to the assembler
	// is missing or incomplete, or when ownership cannot be applied. It aborts the build.
	ErrAssembly = zerr.New("artifact assembly failed")

	// ErrPrivilege is returned when the service would run as a privileged identity,
	// or when the configured execution identity cannot be assumed.
	ErrPrivilege = zerr.New("privileged execution rejected")

	// ErrProbeTimeout is returned when a single liveness check exceeds its time budget.
	ErrProbeTimeout = zerr.New("liveness probe timed out")

	// ErrUnhealthy is returned by the monitor once the probe retry budget is exhausted.
	// The instance is terminal at that point; remediation belongs to the orchestrator.
	ErrUnhealthy = zerr.New("instance unhealthy")

	// ErrInvalidTransition is returned when a pipeline stage is invoked out of order.
	ErrInvalidTransition = zerr.New("invalid pipeline state transition")

	// ErrRootNotAssembled is returned when a launch is attempted against a runtime
	// root that has no assembly receipt.
	ErrRootNotAssembled = zerr.New("runtime root not assembled")
)
