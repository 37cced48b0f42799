package pkgstore

import (
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
)

// Factory selects the installer for a pipeline configuration: the external
// command when one is configured, the builtin local store otherwise.
type Factory struct {
	executor ports.Executor
}

// NewFactory creates a new installer Factory.
func NewFactory(executor ports.Executor) *Factory {
	return &Factory{executor: executor}
}

// ForConfig returns the installer the configuration asks for.
func (f *Factory) ForConfig(cfg *domain.PipelineConfig) ports.Installer {
	if len(cfg.InstallerCommand) > 0 {
		return NewCommandInstaller(cfg.InstallerCommand, f.executor)
	}
	return NewLocalInstaller(cfg.StorePath)
}
