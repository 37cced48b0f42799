package domain

// Directory and file names inside a materialized dependency environment.
const (
	// EnvPackagesDir holds one subdirectory per installed package.
	EnvPackagesDir = "pkgs"

	// EnvBinDir holds executables collected from installed packages.
	EnvBinDir = "bin"

	// EnvReceiptFile records what was installed and the environment fingerprint.
	EnvReceiptFile = "receipt.json"
)

// DependencyEnv is the materialized, isolated package installation resolved
// from a lockfile. It is produced by the resolver stage and consumed read-only
// by the assembler.
type DependencyEnv struct {
	// Root is the absolute path of the environment directory.
	Root string

	// LockID identifies the production package set that produced this env.
	LockID string

	// Packages lists the installed production packages.
	Packages []LockedPackage

	// Fingerprint is the deterministic tree hash of the environment contents.
	// Equal lockfiles must yield equal fingerprints (reproducibility).
	Fingerprint string
}

// InstallReceipt is the on-disk record written into the environment after a
// successful install. The assembler verifies it before copying.
type InstallReceipt struct {
	LockID      string            `json:"lock_id"`
	Packages    map[string]string `json:"packages"` // name -> version
	Fingerprint string            `json:"fingerprint"`
}

// PackageDirName returns the directory name a locked package installs into.
func PackageDirName(pkg LockedPackage) string {
	return pkg.Name.String() + "-" + pkg.Version.String()
}
