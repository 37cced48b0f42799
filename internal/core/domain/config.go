package domain

import "go.trai.ch/zerr"

// PipelineConfig is the validated configuration for one build+launch pipeline.
// It is loaded once and treated as immutable for the lifetime of the run.
type PipelineConfig struct {
	// ManifestPath and LockPath locate the build-time-only inputs.
	ManifestPath string
	LockPath     string

	// SourcePath is the application source tree copied into the runtime root.
	SourcePath string

	// StorePath is the local package store the builtin installer reads from.
	StorePath string

	// OutputPath is where the runtime root is assembled.
	OutputPath string

	// WorkPath holds build-only intermediates (staged environments, receipts).
	// Nothing under it ever lands in the runtime root.
	WorkPath string

	// WritableDirs are the runtime-mutable directories, relative to the root.
	WritableDirs []string

	// InstallerCommand, when set, replaces the builtin installer with an
	// external package manager invocation. The lockfile path and destination
	// directory are appended as the final two arguments.
	InstallerCommand []string

	// CacheDirs are directory names purged from the environment after
	// installation so no package-manager cache survives into the artifact.
	CacheDirs []string

	// Launch is the immutable runtime contract for the service.
	Launch LaunchSpec
}

// Validate checks the configuration invariants that do not require touching
// the filesystem.
func (c *PipelineConfig) Validate() error {
	if c.ManifestPath == "" || c.LockPath == "" {
		return zerr.Wrap(ErrResolution, "manifest and lockfile paths are required")
	}
	if c.SourcePath == "" {
		return zerr.Wrap(ErrAssembly, "source path is required")
	}
	if c.OutputPath == "" {
		return zerr.Wrap(ErrAssembly, "output path is required")
	}
	if len(c.Launch.Command) == 0 {
		return zerr.New("a default launch command is required")
	}
	return c.Launch.Identity.Validate()
}
