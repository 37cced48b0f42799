package fs

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier checks a materialized dependency environment against a lockfile.
// It reports what is wrong, not which stage failed; callers attach the stage
// classification.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyEnvironment checks that every production package pinned in the
// lockfile is present under envRoot with a matching integrity checksum.
// Packages are verified in parallel; the stage boundary stays sequential.
func (v *Verifier) VerifyEnvironment(ctx context.Context, envRoot string, lock *domain.Lockfile) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, pkg := range lock.ProductionPackages() {
		g.Go(func() error {
			return verifyPackage(envRoot, pkg)
		})
	}

	return g.Wait()
}

func verifyPackage(envRoot string, pkg domain.LockedPackage) error {
	dir := filepath.Join(envRoot, domain.EnvPackagesDir, domain.PackageDirName(pkg))

	info, err := os.Stat(dir)
	if err != nil {
		wrapped := zerr.With(zerr.New("locked package missing from environment"), "package", pkg.Name.String())
		return zerr.With(wrapped, "path", dir)
	}
	if !info.IsDir() {
		return zerr.With(zerr.New("package path is not a directory"), "path", dir)
	}

	checksum, err := TreeChecksum(dir)
	if err != nil {
		return err
	}
	if checksum != pkg.Checksum {
		wrapped := zerr.With(zerr.New("package contents do not match locked checksum"), "package", pkg.Name.String())
		wrapped = zerr.With(wrapped, "want", pkg.Checksum)
		return zerr.With(wrapped, "got", checksum)
	}

	return nil
}
