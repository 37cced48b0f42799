// Package config provides the configuration loader for halyard.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the pipeline configuration file name.
const DefaultFilename = "halyard.yaml"

var (
	_ ports.ConfigLoader   = (*Loader)(nil)
	_ ports.ManifestLoader = (*Loader)(nil)
)

// Loader implements ports.ConfigLoader and ports.ManifestLoader using YAML files.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the configuration file at the given path and returns the
// validated pipeline configuration. Relative paths in the file are resolved
// against the file's directory.
func (l *Loader) Load(path string) (*domain.PipelineConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	var halfile Halfile
	if err := yaml.Unmarshal(data, &halfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	base := filepath.Dir(path)
	cfg := &domain.PipelineConfig{
		ManifestPath:     resolvePath(base, halfile.Manifest, "manifest.yaml"),
		LockPath:         resolvePath(base, halfile.Lockfile, "halyard.lock"),
		SourcePath:       resolvePath(base, halfile.Source, "src"),
		StorePath:        resolvePath(base, halfile.Store, "pkgstore"),
		OutputPath:       resolvePath(base, halfile.Output, "runtime"),
		WorkPath:         resolvePath(base, halfile.Work, ".halyard"),
		WritableDirs:     canonicalizeStrings(halfile.WritableDirs),
		InstallerCommand: halfile.Installer.Command,
		CacheDirs:        halfile.Installer.CacheDirs,
		Launch: domain.LaunchSpec{
			Command: halfile.Runtime.Command,
			Identity: domain.ExecutionIdentity{
				User: domain.NewInternedString(halfile.Identity.User),
				UID:  halfile.Identity.UID,
				GID:  halfile.Identity.GID,
			},
			Unbuffered:       boolOrDefault(halfile.Runtime.Unbuffered, true),
			SuppressBytecode: boolOrDefault(halfile.Runtime.SuppressBytecode, true),
			Environment:      halfile.Runtime.Environment,
			Probe: domain.ProbePolicy{
				Command:  halfile.Probe.Command,
				Interval: halfile.Probe.Interval.Std(),
				Grace:    halfile.Probe.Grace.Std(),
				Timeout:  halfile.Probe.Timeout.Std(),
				Retries:  halfile.Probe.Retries,
			}.Normalized(),
		},
	}

	if len(cfg.WritableDirs) == 0 {
		cfg.WritableDirs = slices.Clone(domain.DefaultWritableDirs)
	}
	if len(cfg.CacheDirs) == 0 {
		cfg.CacheDirs = []string{".cache"}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadManifest reads and validates the dependency manifest.
func (l *Loader) LoadManifest(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the pipeline config
	if err != nil {
		wrapped := zerr.Wrap(domain.ErrResolution, "failed to read manifest")
		return nil, zerr.With(wrapped, "path", path)
	}

	var dto ManifestDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, zerr.Wrap(domain.ErrResolution, "failed to parse manifest")
	}

	m := &domain.Manifest{
		Name:            domain.NewInternedString(dto.Name),
		Dependencies:    dto.Dependencies,
		DevDependencies: dto.DevDependencies,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadLockfile reads the lockfile. A missing lockfile is a resolution error:
// the resolver never invents pins from the manifest alone.
func (l *Loader) LoadLockfile(path string) (*domain.Lockfile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the pipeline config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			wrapped := zerr.Wrap(domain.ErrResolution, "lockfile is missing")
			return nil, zerr.With(wrapped, "path", path)
		}
		wrapped := zerr.Wrap(domain.ErrResolution, "failed to read lockfile")
		return nil, zerr.With(wrapped, "path", path)
	}

	var dto LockfileDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, zerr.Wrap(domain.ErrResolution, "failed to parse lockfile")
	}

	lock := &domain.Lockfile{
		Version:  dto.Version,
		Packages: make(map[string]domain.LockedPackage, len(dto.Packages)),
	}
	for name, pkg := range dto.Packages {
		lock.Packages[name] = domain.LockedPackage{
			Name:     domain.NewInternedString(name),
			Version:  domain.NewInternedString(pkg.Version),
			Checksum: pkg.Checksum,
			Dev:      pkg.Dev,
		}
	}
	return lock, nil
}

func resolvePath(base, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(base, value)
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}

	sorted := make([]string, len(strs))
	copy(sorted, strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
