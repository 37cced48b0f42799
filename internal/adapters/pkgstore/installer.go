// Package pkgstore implements dependency environment materialization from a
// local content store or an external package manager command.
package pkgstore

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"go.halyard.dev/halyard/internal/adapters/fs"
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Installer = (*LocalInstaller)(nil)

// LocalInstaller materializes packages from a local content store laid out as
// <store>/<name>-<version>/. Every package tree is integrity-checked against
// the lockfile checksum before it is copied, so a tampered or stale store
// entry aborts resolution.
type LocalInstaller struct {
	storeDir string
	copier   *fs.Copier
}

// NewLocalInstaller creates a LocalInstaller reading from storeDir.
func NewLocalInstaller(storeDir string) *LocalInstaller {
	// Ownership is applied later, when the environment is assembled into the
	// runtime root; the staged environment itself is builder-owned.
	return &LocalInstaller{
		storeDir: storeDir,
		copier:   fs.NewCopier(fs.NewNoopOwner()),
	}
}

// Install populates dest with exactly the non-dev packages pinned in the
// lockfile. Packages are installed in parallel; each is verified before copy.
func (i *LocalInstaller) Install(ctx context.Context, lock *domain.Lockfile, dest string) error {
	pkgsDir := filepath.Join(dest, domain.EnvPackagesDir)
	binDir := filepath.Join(dest, domain.EnvBinDir)
	for _, dir := range []string{pkgsDir, binDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create environment directory"), "path", dir)
		}
	}

	pkgs := lock.ProductionPackages()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, pkg := range pkgs {
		g.Go(func() error {
			return i.installPackage(pkg, pkgsDir)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Executables are linked after the parallel phase, in package name order,
	// so a bin/ name collision across packages resolves identically on every
	// build.
	for _, pkg := range pkgs {
		pkgDir := filepath.Join(pkgsDir, domain.PackageDirName(pkg))
		if err := i.collectExecutables(pkgDir, binDir); err != nil {
			return err
		}
	}
	return nil
}

func (i *LocalInstaller) installPackage(pkg domain.LockedPackage, pkgsDir string) error {
	src := filepath.Join(i.storeDir, domain.PackageDirName(pkg))

	if _, err := os.Stat(src); err != nil {
		wrapped := zerr.Wrap(domain.ErrResolution, "locked package not present in store")
		wrapped = zerr.With(wrapped, "package", pkg.Name.String())
		return zerr.With(wrapped, "path", src)
	}

	checksum, err := fs.TreeChecksum(src)
	if err != nil {
		return err
	}
	if checksum != pkg.Checksum {
		wrapped := zerr.Wrap(domain.ErrResolution, "store package does not match locked checksum")
		wrapped = zerr.With(wrapped, "package", pkg.Name.String())
		wrapped = zerr.With(wrapped, "want", pkg.Checksum)
		return zerr.With(wrapped, "got", checksum)
	}

	dst := filepath.Join(pkgsDir, domain.PackageDirName(pkg))
	if err := i.copier.CopyTree(src, dst, -1, -1); err != nil {
		return zerr.Wrap(err, "failed to copy package into environment")
	}

	return nil
}

// collectExecutables copies a package's bin/ entries into the environment's
// shared bin directory so PATH needs a single entry.
func (i *LocalInstaller) collectExecutables(pkgDir, binDir string) error {
	srcBin := filepath.Join(pkgDir, domain.EnvBinDir)
	entries, err := os.ReadDir(srcBin)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read package bin directory"), "path", srcBin)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(srcBin, entry.Name())
		dst := filepath.Join(binDir, entry.Name())
		if err := copyExecutable(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func copyExecutable(src, dst string) error {
	data, err := os.ReadFile(src) //nolint:gosec // Path comes from the walked store tree
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read executable"), "path", src)
	}
	if err := os.WriteFile(dst, data, 0o755); err != nil { //nolint:gosec // Executables need the exec bit
		return zerr.With(zerr.Wrap(err, "failed to write executable"), "path", dst)
	}
	return nil
}
