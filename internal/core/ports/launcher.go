package ports

import (
	"context"

	"go.halyard.dev/halyard/internal/core/domain"
)

// Launcher starts the service process from an assembled runtime root under
// the runtime supervisor contract.
//
//go:generate go run go.uber.org/mock/mockgen -source=launcher.go -destination=mocks/mock_launcher.go -package=mocks
type Launcher interface {
	// Launch asserts the execution identity, constructs the contract
	// environment, and runs the default command, blocking until the process
	// exits or the context is canceled. A privileged target identity or an
	// effective identity that cannot be dropped is rejected before any
	// application code runs.
	Launch(ctx context.Context, spec *domain.LaunchSpec, root *domain.RuntimeRoot) error
}
