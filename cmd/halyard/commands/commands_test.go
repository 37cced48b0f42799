package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.halyard.dev/halyard/cmd/halyard/commands"
	"go.halyard.dev/halyard/internal/adapters/config"
	adapterfs "go.halyard.dev/halyard/internal/adapters/fs"
	"go.halyard.dev/halyard/internal/adapters/pkgstore"
	"go.halyard.dev/halyard/internal/adapters/shell"
	"go.halyard.dev/halyard/internal/adapters/supervisor"
	"go.halyard.dev/halyard/internal/adapters/telemetry"
	"go.halyard.dev/halyard/internal/app"
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/engine/pipeline"
)

type quietLogger struct{}

func (quietLogger) Info(string) {}
func (quietLogger) Warn(string) {}
func (quietLogger) Error(error) {}

func newTestApp() *app.App {
	log := quietLogger{}
	executor := shell.NewExecutor(log)
	pipe := pipeline.NewPipeline(
		config.NewLoader(),
		pkgstore.NewFactory(executor),
		adapterfs.NewHasher(adapterfs.NewWalker()),
		adapterfs.NewVerifier(),
		adapterfs.NewCopier(adapterfs.NewNoopOwner()),
		telemetry.NewNoOp(),
		log,
	)
	return app.New(config.NewLoader(), pipe, supervisor.NewLauncher(log), executor, log)
}

// writeProject lays out a complete project (config, manifest, lock, store,
// source) and returns the config path.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	pkgDir := filepath.Join(dir, "pkgstore", "requests-2.31.0")
	require.NoError(t, os.MkdirAll(filepath.Join(pkgDir, "requests"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "requests", "api.py"), []byte("api"), 0o644))
	checksum, err := adapterfs.TreeChecksum(pkgDir)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.py"), []byte("entry"), 0o644))

	files := map[string]string{
		"manifest.yaml": "name: trading-bot\ndependencies:\n  requests: \"2.31.0\"\n",
		"halyard.lock":  fmt.Sprintf("version: 1\npackages:\n  requests:\n    version: \"2.31.0\"\n    checksum: %q\n", checksum),
		config.DefaultFilename: `version: "1"
identity:
  user: svc
  uid: 1501
  gid: 1501
runtime:
  cmd: ["run-service"]
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	return filepath.Join(dir, config.DefaultFilename)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(newTestApp())
	cli.SetArgs(args)

	var out bytes.Buffer
	cli.SetOutput(&out, io.Discard)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	configPath := writeProject(t)

	_, err := execute(t, "build", "-c", configPath)
	require.NoError(t, err)

	// The runtime root was assembled next to the config.
	root := filepath.Join(filepath.Dir(configPath), "runtime")
	_, err = os.Stat(filepath.Join(root, domain.RootAppDir, "main.py"))
	require.NoError(t, err)
}

func TestStageCommands(t *testing.T) {
	configPath := writeProject(t)

	out, err := execute(t, "status", "-c", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.StateUnbuilt))

	_, err = execute(t, "resolve", "-c", configPath)
	require.NoError(t, err)

	out, err = execute(t, "status", "-c", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.StateResolved))

	_, err = execute(t, "assemble", "-c", configPath)
	require.NoError(t, err)

	out, err = execute(t, "status", "-c", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.StateAssembled))
}

func TestAssembleBeforeResolveFails(t *testing.T) {
	configPath := writeProject(t)

	_, err := execute(t, "assemble", "-c", configPath)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLaunchBeforeBuildFails(t *testing.T) {
	configPath := writeProject(t)

	_, err := execute(t, "launch", "-c", configPath)
	require.ErrorIs(t, err, domain.ErrRootNotAssembled)
}

func TestProbeCommand(t *testing.T) {
	configPath := writeProject(t)

	// The default probe is the always-success stub.
	_, err := execute(t, "probe", "-c", configPath)
	require.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "halyard version")
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "definitely-not-a-command")
	require.Error(t, err)
}
