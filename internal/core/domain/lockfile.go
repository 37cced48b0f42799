package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// SupportedLockVersion is the lockfile format version this build understands.
const SupportedLockVersion = 1

// Lockfile is the fully pinned, transitively resolved snapshot derived from a
// Manifest. Two builds from the same lockfile must produce bit-identical
// dependency environments.
type Lockfile struct {
	// Version is the lockfile format version.
	Version int

	// Packages maps canonical package names to their pinned entries. The set
	// may be a superset of the manifest (transitive dependencies).
	Packages map[string]LockedPackage
}

// LockedPackage is a single pinned entry in the lockfile.
type LockedPackage struct {
	// Name is the canonical package name.
	Name InternedString

	// Version is the exact resolved version (never a range).
	Version InternedString

	// Checksum is the sha256 integrity checksum of the package contents,
	// in "sha256:<hex>" form.
	Checksum string

	// Dev marks development/test-only packages, which are excluded from the
	// produced environment.
	Dev bool
}

// VerifyManifest checks that this lockfile is a consistent resolution of the
// given manifest: supported version, every manifest dependency pinned with an
// exact version and checksum, and exact-version constraints honored.
func (l *Lockfile) VerifyManifest(m *Manifest) error {
	if l.Version != SupportedLockVersion {
		err := zerr.Wrap(ErrResolution, "unsupported lockfile version")
		return zerr.With(err, "version", l.Version)
	}

	for name, pkg := range l.Packages {
		if pkg.Version.String() == "" {
			err := zerr.Wrap(ErrResolution, "locked package has no pinned version")
			return zerr.With(err, "package", name)
		}
		if pkg.Checksum == "" {
			err := zerr.Wrap(ErrResolution, "locked package has no integrity checksum")
			return zerr.With(err, "package", name)
		}
	}

	if err := l.verifyPinned(m.Dependencies, false); err != nil {
		return err
	}
	return l.verifyPinned(m.DevDependencies, true)
}

func (l *Lockfile) verifyPinned(deps map[string]string, dev bool) error {
	for name, constraint := range deps {
		pkg, ok := l.Packages[name]
		if !ok {
			err := zerr.Wrap(ErrResolution, "manifest dependency missing from lockfile")
			return zerr.With(err, "package", name)
		}
		if pkg.Dev != dev {
			err := zerr.Wrap(ErrResolution, "lockfile dev flag disagrees with manifest")
			return zerr.With(err, "package", name)
		}
		if constraint != "" && constraint != pkg.Version.String() {
			err := zerr.Wrap(ErrResolution, "lockfile pin does not satisfy manifest constraint")
			err = zerr.With(err, "package", name)
			err = zerr.With(err, "constraint", constraint)
			return zerr.With(err, "pinned", pkg.Version.String())
		}
	}
	return nil
}

// ProductionPackages returns the non-dev entries sorted by name. The order is
// deterministic so installation and verification walk packages identically on
// every build.
func (l *Lockfile) ProductionPackages() []LockedPackage {
	pkgs := make([]LockedPackage, 0, len(l.Packages))
	for _, pkg := range l.Packages {
		if !pkg.Dev {
			pkgs = append(pkgs, pkg)
		}
	}
	slices.SortFunc(pkgs, func(a, b LockedPackage) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})
	return pkgs
}
