package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.halyard.dev/halyard/internal/adapters/config"
	"go.halyard.dev/halyard/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `version: "1"
identity:
  user: svc
  uid: 1501
  gid: 1501
runtime:
  cmd: ["run-service"]
`

func TestLoader_Load_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, config.DefaultFilename, minimalConfig)

	cfg, err := config.NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "manifest.yaml"), cfg.ManifestPath)
	assert.Equal(t, filepath.Join(dir, "halyard.lock"), cfg.LockPath)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.SourcePath)
	assert.Equal(t, filepath.Join(dir, "runtime"), cfg.OutputPath)
	assert.Equal(t, filepath.Join(dir, ".halyard"), cfg.WorkPath)
	assert.Equal(t, domain.DefaultWritableDirs, cfg.WritableDirs)
	assert.Equal(t, []string{".cache"}, cfg.CacheDirs)

	assert.True(t, cfg.Launch.Unbuffered, "unbuffered output is the default")
	assert.True(t, cfg.Launch.SuppressBytecode, "bytecode suppression is the default")
	assert.Equal(t, domain.DefaultProbeInterval, cfg.Launch.Probe.Interval)
	assert.Equal(t, domain.DefaultProbeGrace, cfg.Launch.Probe.Grace)
	assert.Equal(t, domain.DefaultProbeTimeout, cfg.Launch.Probe.Timeout)
	assert.Equal(t, domain.DefaultProbeRetries, cfg.Launch.Probe.Retries)
}

func TestLoader_Load_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, config.DefaultFilename, `version: "1"
manifest: deps/manifest.yaml
lockfile: deps/pins.lock
source: service
output: /srv/bot
work: build
writableDirs: [state, logs]
identity:
  user: trader
  uid: 2000
  gid: 2000
runtime:
  cmd: ["python", "-m", "bot"]
  unbuffered: false
  suppressBytecode: false
  environment:
    TZ: UTC
probe:
  cmd: ["check-alive"]
  interval: 15s
  grace: 5s
  timeout: 2s
  retries: 5
installer:
  cacheDirs: [__pycache__, .cache]
`)

	cfg, err := config.NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "deps", "manifest.yaml"), cfg.ManifestPath)
	assert.Equal(t, filepath.Join(dir, "deps", "pins.lock"), cfg.LockPath)
	assert.Equal(t, "/srv/bot", cfg.OutputPath, "absolute paths pass through")
	assert.Equal(t, []string{"logs", "state"}, cfg.WritableDirs)

	assert.Equal(t, []string{"python", "-m", "bot"}, cfg.Launch.Command)
	assert.False(t, cfg.Launch.Unbuffered)
	assert.False(t, cfg.Launch.SuppressBytecode)
	assert.Equal(t, map[string]string{"TZ": "UTC"}, cfg.Launch.Environment)

	assert.Equal(t, []string{"check-alive"}, cfg.Launch.Probe.Command)
	assert.Equal(t, 15*time.Second, cfg.Launch.Probe.Interval)
	assert.Equal(t, 5*time.Second, cfg.Launch.Probe.Grace)
	assert.Equal(t, 2*time.Second, cfg.Launch.Probe.Timeout)
	assert.Equal(t, 5, cfg.Launch.Probe.Retries)
}

func TestLoader_Load_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "root identity rejected",
			content: `version: "1"
identity:
  user: root
  uid: 0
  gid: 0
runtime:
  cmd: ["run-service"]
`,
		},
		{
			name: "missing launch command",
			content: `version: "1"
identity:
  user: svc
  uid: 1501
  gid: 1501
`,
		},
		{
			name:    "malformed yaml",
			content: "runtime: [unclosed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), config.DefaultFilename, tt.content)
			_, err := config.NewLoader().Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoader_LoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "manifest.yaml", `name: trading-bot
dependencies:
  requests: "2.31.0"
  numpy: ""
devDependencies:
  pytest: "8.0.0"
`)

	m, err := config.NewLoader().LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "trading-bot", m.Name.String())
	assert.Equal(t, "2.31.0", m.Dependencies["requests"])
	assert.Contains(t, m.DevDependencies, "pytest")

	_, err = config.NewLoader().LoadManifest(filepath.Join(dir, "absent.yaml"))
	require.ErrorIs(t, err, domain.ErrResolution)
}

func TestLoader_LoadLockfile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "halyard.lock", `version: 1
packages:
  requests:
    version: "2.31.0"
    checksum: "sha256:abc"
  pytest:
    version: "8.0.0"
    checksum: "sha256:def"
    dev: true
`)

	lock, err := config.NewLoader().LoadLockfile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, lock.Version)
	assert.Equal(t, "2.31.0", lock.Packages["requests"].Version.String())
	assert.True(t, lock.Packages["pytest"].Dev)
}

func TestLoader_LoadLockfile_Missing(t *testing.T) {
	_, err := config.NewLoader().LoadLockfile(filepath.Join(t.TempDir(), "halyard.lock"))
	require.ErrorIs(t, err, domain.ErrResolution,
		"a missing lockfile must abort resolution, never fall back to the manifest")
}
