package ports

import (
	"context"

	"go.halyard.dev/halyard/internal/core/domain"
)

// Verifier checks that a materialized dependency environment is complete.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	// VerifyEnvironment checks that every production package pinned in the
	// lockfile is present under the environment root with matching contents.
	// A missing or mismatched package is an error.
	VerifyEnvironment(ctx context.Context, envRoot string, lock *domain.Lockfile) error
}
