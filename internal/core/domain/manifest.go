package domain

import "go.trai.ch/zerr"

// Manifest declares the direct dependencies of the service and their version
// constraints. It is produced upstream, committed, and read-only here.
type Manifest struct {
	// Name is the service name (e.g., "trading-bot").
	Name InternedString

	// Dependencies maps package names to version constraints for packages the
	// service needs at runtime. A constraint is either an exact version
	// (e.g., "2.31.0") or empty, meaning "whatever the lock pins".
	Dependencies map[string]string

	// DevDependencies maps package names to constraints for development and
	// test tooling. These are never installed into the dependency environment.
	DevDependencies map[string]string
}

// Validate checks structural invariants of the manifest.
func (m *Manifest) Validate() error {
	if m.Name.String() == "" {
		return zerr.Wrap(ErrResolution, "manifest is missing a service name")
	}
	for name := range m.Dependencies {
		if _, dev := m.DevDependencies[name]; dev {
			err := zerr.Wrap(ErrResolution, "package declared as both production and dev dependency")
			return zerr.With(err, "package", name)
		}
	}
	return nil
}
