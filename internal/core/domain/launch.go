package domain

import (
	"path/filepath"
	"slices"
)

// Environment variables that make up the runtime supervisor contract. The
// launched service (or its interpreter shim) recognizes these; anything else
// it needs goes through LaunchSpec.Environment.
const (
	// EnvUnbuffered disables output buffering so logs flush immediately.
	EnvUnbuffered = "HALYARD_UNBUFFERED"

	// EnvNoBytecode suppresses compiled-artifact caches that would drift
	// between builds.
	EnvNoBytecode = "HALYARD_NO_BYTECODE"

	// EnvRoot points at the isolated dependency environment inside the
	// runtime root.
	EnvRoot = "HALYARD_ENV_ROOT"
)

// LaunchSpec is the immutable runtime contract for the service process. It is
// constructed once from configuration at build time and passed into the
// launch call; nothing at runtime reads ambient configuration.
type LaunchSpec struct {
	// Command is the single default launch command. No argument parsing or
	// subcommand dispatch happens at this layer.
	Command []string

	// Identity is the non-privileged identity the process must run as.
	Identity ExecutionIdentity

	// Unbuffered requests unbuffered output from the service.
	Unbuffered bool

	// SuppressBytecode requests suppression of compiled-artifact caches.
	SuppressBytecode bool

	// Environment holds free-form user-provided variables, applied last.
	Environment map[string]string

	// Probe is the liveness probe policy for the launched process.
	Probe ProbePolicy
}

// ContractEnv returns the supervisor-contract variables for a process rooted
// at the given runtime root, sorted for determinism. PATH handling (prepending
// the environment's bin directory) is done by the executor during merging.
func (s *LaunchSpec) ContractEnv(rootPath string) []string {
	env := []string{
		EnvRoot + "=" + filepath.Join(rootPath, RootEnvDir),
	}
	if s.Unbuffered {
		env = append(env, EnvUnbuffered+"=1")
	}
	if s.SuppressBytecode {
		env = append(env, EnvNoBytecode+"=1")
	}
	for k, v := range s.Environment {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	return env
}

// BinDir returns the executable search directory of the embedded environment,
// which the executor prepends to PATH so only resolved binaries are found.
func (s *LaunchSpec) BinDir(rootPath string) string {
	return filepath.Join(rootPath, RootEnvDir, EnvBinDir)
}

// WorkingDir returns the working directory of the launched process.
func (s *LaunchSpec) WorkingDir(rootPath string) string {
	return filepath.Join(rootPath, RootAppDir)
}
