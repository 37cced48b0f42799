// Package pipeline implements the staged artifact pipeline: dependency
// resolution into an isolated environment, followed by assembly of the
// runtime root the service runs from.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.halyard.dev/halyard/internal/adapters/cas"
	adapterfs "go.halyard.dev/halyard/internal/adapters/fs"
	"go.halyard.dev/halyard/internal/adapters/pkgstore"
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
)

// envDirName is the directory under the work path holding the materialized
// dependency environment. A ".partial" sibling is used for staging.
const envDirName = "env"

// newReceiptStore is swapped in tests to observe receipt writes.
var newReceiptStore = func(dir string) (ports.ReceiptStore, error) {
	return cas.NewStore(dir)
}

// Pipeline runs the build stages against one pipeline configuration. Stages
// fail closed: an error leaves previously promoted artifacts untouched and
// never promotes a partial one.
type Pipeline struct {
	manifests  ports.ManifestLoader
	installers *pkgstore.Factory
	hasher     ports.Hasher
	verifier   ports.Verifier
	copier     *adapterfs.Copier
	telemetry  ports.Telemetry
	logger     ports.Logger
}

// NewPipeline creates a Pipeline from its collaborators.
func NewPipeline(
	manifests ports.ManifestLoader,
	installers *pkgstore.Factory,
	hasher ports.Hasher,
	verifier ports.Verifier,
	copier *adapterfs.Copier,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Pipeline {
	return &Pipeline{
		manifests:  manifests,
		installers: installers,
		hasher:     hasher,
		verifier:   verifier,
		copier:     copier,
		telemetry:  telemetry,
		logger:     logger,
	}
}

func (p *Pipeline) receipts(cfg *domain.PipelineConfig) (ports.ReceiptStore, error) {
	return newReceiptStore(filepath.Join(cfg.WorkPath, "receipts"))
}

func (p *Pipeline) envDir(cfg *domain.PipelineConfig) string {
	return filepath.Join(cfg.WorkPath, envDirName)
}

func resolveKey(lockID string) string {
	return "resolve:" + lockID
}

func assembleKey(outputPath string) string {
	return "assemble:" + filepath.Clean(outputPath)
}

// CurrentState derives the pipeline state from the receipts on disk. Receipts
// are written only after a stage fully succeeds, so their absence means the
// stage never completed.
func (p *Pipeline) CurrentState(cfg *domain.PipelineConfig) (domain.PipelineState, error) {
	store, err := p.receipts(cfg)
	if err != nil {
		return domain.StateUnbuilt, err
	}

	lock, err := p.manifests.LoadLockfile(cfg.LockPath)
	if err != nil {
		return domain.StateUnbuilt, err
	}
	lockID := domain.GenerateLockID(lock)

	assembled, err := store.Get(assembleKey(cfg.OutputPath))
	if err != nil {
		return domain.StateUnbuilt, err
	}
	if assembled != nil && assembled.LockID == lockID {
		return domain.StateAssembled, nil
	}

	resolved, err := store.Get(resolveKey(lockID))
	if err != nil {
		return domain.StateUnbuilt, err
	}
	if resolved != nil {
		return domain.StateResolved, nil
	}

	return domain.StateUnbuilt, nil
}

// Resolve materializes the locked dependency set into an isolated
// environment under the work path and returns its description. An unchanged
// lockfile with an intact environment is a cache hit and is reused as-is.
func (p *Pipeline) Resolve(ctx context.Context, cfg *domain.PipelineConfig) (*domain.DependencyEnv, error) {
	ctx, vtx := p.telemetry.Record(ctx, "resolve dependencies",
		ports.WithStage(domain.StateResolved), ports.WithInput(cfg.LockPath))

	env, cached, err := p.resolve(ctx, cfg)
	if cached {
		vtx.Cached()
	}
	vtx.Complete(err)
	return env, err
}

func (p *Pipeline) resolve(ctx context.Context, cfg *domain.PipelineConfig) (*domain.DependencyEnv, bool, error) {
	manifest, err := p.manifests.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, false, err
	}
	lock, err := p.manifests.LoadLockfile(cfg.LockPath)
	if err != nil {
		return nil, false, err
	}
	if err := lock.VerifyManifest(manifest); err != nil {
		return nil, false, err
	}

	lockID := domain.GenerateLockID(lock)
	store, err := p.receipts(cfg)
	if err != nil {
		return nil, false, err
	}

	envDir := p.envDir(cfg)
	if env := p.reuseResolved(ctx, store, lock, lockID, envDir); env != nil {
		return env, true, nil
	}

	env, err := p.install(ctx, cfg, lock, lockID, envDir)
	if err != nil {
		return nil, false, err
	}

	err = store.Put(domain.BuildReceipt{
		Key:         resolveKey(lockID),
		State:       domain.StateResolved,
		LockID:      lockID,
		Fingerprint: env.Fingerprint,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return nil, false, err
	}
	return env, false, nil
}

// reuseResolved returns the existing environment when the lockfile has not
// changed and the environment still verifies. Any doubt means nil and a
// fresh install.
func (p *Pipeline) reuseResolved(
	ctx context.Context,
	store ports.ReceiptStore,
	lock *domain.Lockfile,
	lockID, envDir string,
) *domain.DependencyEnv {
	receipt, err := store.Get(resolveKey(lockID))
	if err != nil || receipt == nil {
		return nil
	}

	installed, err := readInstallReceipt(envDir)
	if err != nil || installed.LockID != lockID {
		return nil
	}
	if err := p.verifier.VerifyEnvironment(ctx, envDir, lock); err != nil {
		p.logger.Warn("resolved environment failed verification, rebuilding")
		return nil
	}

	return &domain.DependencyEnv{
		Root:        envDir,
		LockID:      lockID,
		Packages:    lock.ProductionPackages(),
		Fingerprint: installed.Fingerprint,
	}
}

func (p *Pipeline) install(
	ctx context.Context,
	cfg *domain.PipelineConfig,
	lock *domain.Lockfile,
	lockID, envDir string,
) (*domain.DependencyEnv, error) {
	staging := envDir + ".partial"
	if err := os.RemoveAll(staging); err != nil {
		return nil, zerr.Wrap(err, "failed to clear staging environment")
	}
	if err := os.MkdirAll(staging, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create staging environment")
	}

	installer := p.installers.ForConfig(cfg)
	if err := installer.Install(ctx, lock, staging); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	if err := purgeCaches(staging, cfg.CacheDirs); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	if err := p.verifier.VerifyEnvironment(ctx, staging, lock); err != nil {
		_ = os.RemoveAll(staging)
		return nil, errors.Join(domain.ErrResolution, err)
	}

	// Fingerprint covers the package trees only, so writing the receipt
	// below does not invalidate it.
	fingerprint, err := p.hasher.ComputeTreeHash(filepath.Join(staging, domain.EnvPackagesDir))
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	if err := writeInstallReceipt(staging, lock, lockID, fingerprint); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	if err := os.RemoveAll(envDir); err != nil {
		return nil, zerr.Wrap(err, "failed to clear previous environment")
	}
	if err := os.Rename(staging, envDir); err != nil {
		return nil, zerr.Wrap(err, "failed to promote environment")
	}

	return &domain.DependencyEnv{
		Root:        envDir,
		LockID:      lockID,
		Packages:    lock.ProductionPackages(),
		Fingerprint: fingerprint,
	}, nil
}

// LoadResolved reconstructs the dependency environment produced by a previous
// Resolve. It is how the standalone assemble stage picks up where resolution
// left off; a missing environment means the stages ran out of order.
func (p *Pipeline) LoadResolved(ctx context.Context, cfg *domain.PipelineConfig) (*domain.DependencyEnv, error) {
	lock, err := p.manifests.LoadLockfile(cfg.LockPath)
	if err != nil {
		return nil, err
	}
	lockID := domain.GenerateLockID(lock)

	envDir := p.envDir(cfg)
	installed, err := readInstallReceipt(envDir)
	if err != nil {
		wrapped := zerr.Wrap(domain.ErrInvalidTransition, "no resolved environment to assemble from")
		return nil, zerr.With(wrapped, "path", envDir)
	}
	if installed.LockID != lockID {
		wrapped := zerr.Wrap(domain.ErrInvalidTransition, "resolved environment is stale for this lockfile")
		wrapped = zerr.With(wrapped, "environment_lock", installed.LockID)
		return nil, zerr.With(wrapped, "lockfile_lock", lockID)
	}
	if err := p.verifier.VerifyEnvironment(ctx, envDir, lock); err != nil {
		return nil, errors.Join(domain.ErrAssembly, err)
	}

	return &domain.DependencyEnv{
		Root:        envDir,
		LockID:      lockID,
		Packages:    lock.ProductionPackages(),
		Fingerprint: installed.Fingerprint,
	}, nil
}

// Assemble builds the runtime root from a resolved environment and the
// application source tree, owned throughout by the execution identity. The
// root is staged next to the output path and promoted with a single rename,
// so a failed assembly never leaves a partial root behind.
func (p *Pipeline) Assemble(ctx context.Context, cfg *domain.PipelineConfig, env *domain.DependencyEnv) (*domain.RuntimeRoot, error) {
	ctx, vtx := p.telemetry.Record(ctx, "assemble runtime root",
		ports.WithStage(domain.StateAssembled), ports.WithInput(env.LockID))

	root, cached, err := p.assemble(ctx, cfg, env)
	if cached {
		vtx.Cached()
	}
	vtx.Complete(err)
	return root, err
}

func (p *Pipeline) assemble(ctx context.Context, cfg *domain.PipelineConfig, env *domain.DependencyEnv) (*domain.RuntimeRoot, bool, error) {
	identity := cfg.Launch.Identity
	if err := identity.Validate(); err != nil {
		return nil, false, err
	}

	store, err := p.receipts(cfg)
	if err != nil {
		return nil, false, err
	}

	root := &domain.RuntimeRoot{
		Path:           cfg.OutputPath,
		Identity:       identity,
		WritableDirs:   slices.Clone(cfg.WritableDirs),
		EnvFingerprint: env.Fingerprint,
	}

	if p.reuseAssembled(store, cfg, env) {
		return root, true, nil
	}

	lock := lockfileFor(env)
	if err := p.verifier.VerifyEnvironment(ctx, env.Root, lock); err != nil {
		return nil, false, errors.Join(domain.ErrAssembly, err)
	}
	if _, err := os.Stat(cfg.SourcePath); err != nil {
		wrapped := zerr.Wrap(domain.ErrAssembly, "application source tree is missing")
		return nil, false, zerr.With(wrapped, "path", cfg.SourcePath)
	}

	staging := cfg.OutputPath + ".partial"
	if err := os.RemoveAll(staging); err != nil {
		return nil, false, zerr.Wrap(err, "failed to clear staging root")
	}
	if err := p.populateRoot(staging, cfg, env, identity); err != nil {
		_ = os.RemoveAll(staging)
		return nil, false, err
	}

	if err := os.RemoveAll(cfg.OutputPath); err != nil {
		return nil, false, zerr.Wrap(err, "failed to clear previous runtime root")
	}
	if err := os.Rename(staging, cfg.OutputPath); err != nil {
		return nil, false, zerr.Wrap(err, "failed to promote runtime root")
	}

	err = store.Put(domain.BuildReceipt{
		Key:         assembleKey(cfg.OutputPath),
		State:       domain.StateAssembled,
		LockID:      env.LockID,
		Fingerprint: env.Fingerprint,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return nil, false, err
	}
	return root, false, nil
}

// reuseAssembled reports whether the existing runtime root was assembled from
// this exact environment and can be kept.
func (p *Pipeline) reuseAssembled(store ports.ReceiptStore, cfg *domain.PipelineConfig, env *domain.DependencyEnv) bool {
	receipt, err := store.Get(assembleKey(cfg.OutputPath))
	if err != nil || receipt == nil {
		return false
	}
	if receipt.LockID != env.LockID || receipt.Fingerprint != env.Fingerprint {
		return false
	}
	info, err := os.Stat(cfg.OutputPath)
	return err == nil && info.IsDir()
}

func (p *Pipeline) populateRoot(staging string, cfg *domain.PipelineConfig, env *domain.DependencyEnv, identity domain.ExecutionIdentity) error {
	uid, gid := identity.UID, identity.GID

	if err := p.copier.MakeOwnedDir(staging, domain.DirPerm, uid, gid); err != nil {
		return errors.Join(domain.ErrAssembly, err)
	}
	if err := p.copier.CopyTree(env.Root, filepath.Join(staging, domain.RootEnvDir), uid, gid); err != nil {
		return errors.Join(domain.ErrAssembly, err)
	}
	if err := p.copier.CopyTree(cfg.SourcePath, filepath.Join(staging, domain.RootAppDir), uid, gid); err != nil {
		return errors.Join(domain.ErrAssembly, err)
	}
	for _, dir := range cfg.WritableDirs {
		if err := p.copier.MakeOwnedDir(filepath.Join(staging, dir), domain.WritableDirPerm, uid, gid); err != nil {
			return errors.Join(domain.ErrAssembly, err)
		}
	}
	return nil
}

// AssembledRoot returns the runtime root recorded by a previous Assemble.
// A missing receipt means the root must not be launched from.
func (p *Pipeline) AssembledRoot(cfg *domain.PipelineConfig) (*domain.RuntimeRoot, error) {
	store, err := p.receipts(cfg)
	if err != nil {
		return nil, err
	}

	receipt, err := store.Get(assembleKey(cfg.OutputPath))
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		wrapped := zerr.Wrap(domain.ErrRootNotAssembled, "no assembly receipt for output path")
		return nil, zerr.With(wrapped, "path", cfg.OutputPath)
	}
	if info, err := os.Stat(cfg.OutputPath); err != nil || !info.IsDir() {
		wrapped := zerr.Wrap(domain.ErrRootNotAssembled, "assembly receipt exists but runtime root is gone")
		return nil, zerr.With(wrapped, "path", cfg.OutputPath)
	}

	return &domain.RuntimeRoot{
		Path:           cfg.OutputPath,
		Identity:       cfg.Launch.Identity,
		WritableDirs:   slices.Clone(cfg.WritableDirs),
		EnvFingerprint: receipt.Fingerprint,
	}, nil
}

func lockfileFor(env *domain.DependencyEnv) *domain.Lockfile {
	lock := &domain.Lockfile{
		Version:  domain.SupportedLockVersion,
		Packages: make(map[string]domain.LockedPackage, len(env.Packages)),
	}
	for _, pkg := range env.Packages {
		lock.Packages[pkg.Name.String()] = pkg
	}
	return lock
}

// purgeCaches removes directories with the given names anywhere under root,
// so no installer cache survives into the artifact.
func purgeCaches(root string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root || !d.IsDir() {
			return nil
		}
		if slices.Contains(names, d.Name()) {
			if err := os.RemoveAll(path); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to purge cache directory"), "path", path)
			}
			return fs.SkipDir
		}
		return nil
	})
}

func installReceiptPath(envDir string) string {
	return filepath.Join(envDir, domain.EnvReceiptFile)
}

func readInstallReceipt(envDir string) (*domain.InstallReceipt, error) {
	data, err := os.ReadFile(installReceiptPath(envDir)) //nolint:gosec // Path is under the work dir
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read install receipt")
	}
	var receipt domain.InstallReceipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, zerr.Wrap(err, "failed to parse install receipt")
	}
	return &receipt, nil
}

func writeInstallReceipt(envDir string, lock *domain.Lockfile, lockID, fingerprint string) error {
	receipt := domain.InstallReceipt{
		LockID:      lockID,
		Packages:    make(map[string]string, len(lock.Packages)),
		Fingerprint: fingerprint,
	}
	for _, pkg := range lock.ProductionPackages() {
		receipt.Packages[pkg.Name.String()] = pkg.Version.String()
	}

	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal install receipt")
	}
	if err := os.WriteFile(installReceiptPath(envDir), data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write install receipt")
	}
	return nil
}
