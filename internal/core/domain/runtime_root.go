package domain

import "io/fs"

// Layout of an assembled runtime root.
const (
	// RootEnvDir is where the dependency environment lands, verbatim.
	RootEnvDir = "env"

	// RootAppDir is where the application source tree lands.
	RootAppDir = "app"
)

// DefaultWritableDirs are the runtime-mutable directories created during
// assembly when the configuration does not override them.
var DefaultWritableDirs = []string{"data_cache", "logs", "results"}

// Permissions applied during assembly. Writable dirs are private to the
// execution identity.
const (
	DirPerm         fs.FileMode = 0o755
	WritableDirPerm fs.FileMode = 0o700
	FilePerm        fs.FileMode = 0o644
)

// RuntimeRoot is the final assembled filesystem layout for the running
// service: the dependency environment, the application tree, and the writable
// data directories, all owned by the execution identity.
type RuntimeRoot struct {
	// Path is the absolute path of the root directory.
	Path string

	// Identity owns every file under the root.
	Identity ExecutionIdentity

	// WritableDirs are the runtime-mutable subdirectories, relative to Path.
	WritableDirs []string

	// EnvFingerprint is the fingerprint of the embedded dependency environment.
	EnvFingerprint string
}
