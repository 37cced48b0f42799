package ports

import (
	"context"

	"go.halyard.dev/halyard/internal/core/domain"
)

// Installer materializes the locked production package set into a destination
// directory. Implementations must be reproducible: installing an unchanged
// lockfile twice yields byte-for-byte identical environments.
//
//go:generate go run go.uber.org/mock/mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type Installer interface {
	// Install populates dest with exactly the non-dev packages pinned in the
	// lockfile. Dev packages are excluded by policy, not convention. On any
	// failure the destination must not be treated as usable.
	Install(ctx context.Context, lock *domain.Lockfile, dest string) error
}
