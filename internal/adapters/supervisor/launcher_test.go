package supervisor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.halyard.dev/halyard/internal/adapters/supervisor"
	"go.halyard.dev/halyard/internal/core/domain"
)

// makeRuntimeRoot lays out a minimal assembled root: env/bin plus app.
func makeRuntimeRoot(t *testing.T) *domain.RuntimeRoot {
	t.Helper()
	path := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(path, domain.RootEnvDir, domain.EnvBinDir), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(path, domain.RootAppDir), 0o755))
	return &domain.RuntimeRoot{
		Path:     path,
		Identity: identity(1501, 1501),
	}
}

func launchSpec(command ...string) *domain.LaunchSpec {
	return &domain.LaunchSpec{
		Command:          command,
		Identity:         identity(1501, 1501),
		Unbuffered:       true,
		SuppressBytecode: true,
	}
}

func TestLauncher_RunsFromAppDir(t *testing.T) {
	supervisor.StubEUID(t, 1501)
	root := makeRuntimeRoot(t)

	spec := launchSpec("sh", "-c", `test "$(pwd)" = "`+filepath.Join(root.Path, domain.RootAppDir)+`"`)
	launcher := supervisor.NewLauncher(testLogger{})
	require.NoError(t, launcher.Launch(context.Background(), spec, root))
}

func TestLauncher_ContractEnvironment(t *testing.T) {
	supervisor.StubEUID(t, 1501)
	root := makeRuntimeRoot(t)

	script := `test "$HALYARD_UNBUFFERED" = "1" &&
test "$HALYARD_NO_BYTECODE" = "1" &&
test "$HALYARD_ENV_ROOT" = "` + filepath.Join(root.Path, domain.RootEnvDir) + `"`
	spec := launchSpec("sh", "-c", script)
	launcher := supervisor.NewLauncher(testLogger{})
	require.NoError(t, launcher.Launch(context.Background(), spec, root))
}

func TestLauncher_EnvBinWinsOnPath(t *testing.T) {
	supervisor.StubEUID(t, 1501)
	root := makeRuntimeRoot(t)

	tool := filepath.Join(root.Path, domain.RootEnvDir, domain.EnvBinDir, "svc-entry")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	spec := launchSpec("svc-entry")
	launcher := supervisor.NewLauncher(testLogger{})
	require.NoError(t, launcher.Launch(context.Background(), spec, root))
}

func TestLauncher_ProcessFailurePropagates(t *testing.T) {
	supervisor.StubEUID(t, 1501)
	root := makeRuntimeRoot(t)

	spec := launchSpec("sh", "-c", "exit 3")
	launcher := supervisor.NewLauncher(testLogger{})
	require.Error(t, launcher.Launch(context.Background(), spec, root))
}

func TestLauncher_RefusesUnreachableIdentity(t *testing.T) {
	supervisor.StubEUID(t, 1000)
	root := makeRuntimeRoot(t)

	spec := launchSpec("sh", "-c", "exit 0")
	launcher := supervisor.NewLauncher(testLogger{})
	err := launcher.Launch(context.Background(), spec, root)
	require.ErrorIs(t, err, domain.ErrPrivilege, "the service must never start under the wrong identity")
}

func TestLauncher_EmptyCommandRejected(t *testing.T) {
	supervisor.StubEUID(t, 1501)
	root := makeRuntimeRoot(t)

	launcher := supervisor.NewLauncher(testLogger{})
	require.Error(t, launcher.Launch(context.Background(), &domain.LaunchSpec{Identity: identity(1501, 1501)}, root))
}
