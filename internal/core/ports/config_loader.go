// Package ports defines the core interfaces for the application.
package ports

import "go.halyard.dev/halyard/internal/core/domain"

// ConfigLoader defines the interface for loading the pipeline configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at the given path and returns the
	// validated pipeline configuration.
	Load(path string) (*domain.PipelineConfig, error)
}

// ManifestLoader reads the build-time dependency inputs.
type ManifestLoader interface {
	// LoadManifest reads and validates the dependency manifest.
	LoadManifest(path string) (*domain.Manifest, error)

	// LoadLockfile reads the lockfile. A missing or unreadable lockfile is a
	// resolution error: the pipeline never resolves from the manifest alone.
	LoadLockfile(path string) (*domain.Lockfile, error)
}
