package pkgstore

import (
	"context"
	"os"

	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.Installer = (*CommandInstaller)(nil)

// CommandInstaller delegates materialization to an external package manager.
// The contract is: lockfile in, populated environment out. The configured
// command is invoked with the lockfile path and the destination directory
// appended as its final two arguments; its internals (and its dev-dependency
// exclusion flags) are the command's own business.
type CommandInstaller struct {
	command  []string
	executor ports.Executor
}

// NewCommandInstaller creates a CommandInstaller running the given command
// through the executor.
func NewCommandInstaller(command []string, executor ports.Executor) *CommandInstaller {
	return &CommandInstaller{
		command:  command,
		executor: executor,
	}
}

// Install writes the production subset of the lockfile to a temporary file and
// invokes the external command against it.
func (i *CommandInstaller) Install(ctx context.Context, lock *domain.Lockfile, dest string) error {
	if len(i.command) == 0 {
		return zerr.Wrap(domain.ErrResolution, "no installer command configured")
	}

	lockPath, cleanup, err := writeLockTempFile(lock)
	if err != nil {
		return err
	}
	defer cleanup()

	args := make([]string, 0, len(i.command)+2)
	args = append(args, i.command...)
	args = append(args, lockPath, dest)

	if err := i.executor.Execute(ctx, args, "", nil); err != nil {
		return zerr.Wrap(domain.ErrResolution, err.Error())
	}
	return nil
}

// lockDocument is the canonical on-disk form handed to the external command.
// Dev packages are stripped before writing: exclusion is enforced here, not
// left to the command's configuration.
type lockDocument struct {
	Version  int                        `yaml:"version"`
	Packages map[string]lockDocumentPkg `yaml:"packages"`
}

type lockDocumentPkg struct {
	Version  string `yaml:"version"`
	Checksum string `yaml:"checksum"`
}

func writeLockTempFile(lock *domain.Lockfile) (path string, cleanup func(), err error) {
	doc := lockDocument{
		Version:  lock.Version,
		Packages: make(map[string]lockDocumentPkg),
	}
	for _, pkg := range lock.ProductionPackages() {
		doc.Packages[pkg.Name.String()] = lockDocumentPkg{
			Version:  pkg.Version.String(),
			Checksum: pkg.Checksum,
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", nil, zerr.Wrap(err, "failed to marshal lockfile")
	}

	tmpFile, err := os.CreateTemp("", "halyard-lock-*.yaml")
	if err != nil {
		return "", nil, zerr.Wrap(err, "failed to create temp lockfile")
	}

	path = tmpFile.Name()
	cleanup = func() {
		_ = os.Remove(path)
	}

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, zerr.Wrap(writeErr, "failed to write temp lockfile")
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, zerr.Wrap(closeErr, "failed to close temp lockfile")
	}

	return path, cleanup, nil
}
