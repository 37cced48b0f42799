package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.halyard.dev/halyard/internal/core/domain"
)

func lockedPkg(name, version, checksum string, dev bool) domain.LockedPackage {
	return domain.LockedPackage{
		Name:     domain.NewInternedString(name),
		Version:  domain.NewInternedString(version),
		Checksum: checksum,
		Dev:      dev,
	}
}

func validLockfile() *domain.Lockfile {
	return &domain.Lockfile{
		Version: domain.SupportedLockVersion,
		Packages: map[string]domain.LockedPackage{
			"requests": lockedPkg("requests", "2.31.0", "sha256:aaa", false),
			"numpy":    lockedPkg("numpy", "1.26.4", "sha256:bbb", false),
			"pytest":   lockedPkg("pytest", "8.0.0", "sha256:ccc", true),
		},
	}
}

func validManifest() *domain.Manifest {
	return &domain.Manifest{
		Name: domain.NewInternedString("trading-bot"),
		Dependencies: map[string]string{
			"requests": "2.31.0",
			"numpy":    "",
		},
		DevDependencies: map[string]string{
			"pytest": "8.0.0",
		},
	}
}

func TestLockfile_VerifyManifest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(l *domain.Lockfile, m *domain.Manifest)
		wantErr error
	}{
		{
			name:   "consistent pair verifies",
			mutate: func(*domain.Lockfile, *domain.Manifest) {},
		},
		{
			name: "unsupported lock version",
			mutate: func(l *domain.Lockfile, _ *domain.Manifest) {
				l.Version = 99
			},
			wantErr: domain.ErrResolution,
		},
		{
			name: "entry without pinned version",
			mutate: func(l *domain.Lockfile, _ *domain.Manifest) {
				l.Packages["numpy"] = lockedPkg("numpy", "", "sha256:bbb", false)
			},
			wantErr: domain.ErrResolution,
		},
		{
			name: "entry without checksum",
			mutate: func(l *domain.Lockfile, _ *domain.Manifest) {
				l.Packages["numpy"] = lockedPkg("numpy", "1.26.4", "", false)
			},
			wantErr: domain.ErrResolution,
		},
		{
			name: "manifest dependency missing from lock",
			mutate: func(l *domain.Lockfile, _ *domain.Manifest) {
				delete(l.Packages, "requests")
			},
			wantErr: domain.ErrResolution,
		},
		{
			name: "dev flag disagrees with manifest",
			mutate: func(l *domain.Lockfile, _ *domain.Manifest) {
				l.Packages["pytest"] = lockedPkg("pytest", "8.0.0", "sha256:ccc", false)
			},
			wantErr: domain.ErrResolution,
		},
		{
			name: "pin does not satisfy exact constraint",
			mutate: func(_ *domain.Lockfile, m *domain.Manifest) {
				m.Dependencies["requests"] = "2.32.0"
			},
			wantErr: domain.ErrResolution,
		},
		{
			name: "empty constraint accepts any pin",
			mutate: func(l *domain.Lockfile, _ *domain.Manifest) {
				l.Packages["numpy"] = lockedPkg("numpy", "2.0.0", "sha256:ddd", false)
			},
		},
		{
			name: "transitive packages beyond the manifest are fine",
			mutate: func(l *domain.Lockfile, _ *domain.Manifest) {
				l.Packages["urllib3"] = lockedPkg("urllib3", "2.2.0", "sha256:eee", false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lock := validLockfile()
			manifest := validManifest()
			tt.mutate(lock, manifest)

			err := lock.VerifyManifest(manifest)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLockfile_ProductionPackages(t *testing.T) {
	lock := validLockfile()
	pkgs := lock.ProductionPackages()

	require.Len(t, pkgs, 2, "dev packages must be excluded")
	assert.Equal(t, "numpy", pkgs[0].Name.String())
	assert.Equal(t, "requests", pkgs[1].Name.String())
}

func TestGenerateLockID(t *testing.T) {
	a := domain.GenerateLockID(validLockfile())
	b := domain.GenerateLockID(validLockfile())
	assert.Equal(t, a, b, "identical lockfiles must produce identical ids")

	changed := validLockfile()
	changed.Packages["requests"] = lockedPkg("requests", "2.32.0", "sha256:aaa", false)
	assert.NotEqual(t, a, domain.GenerateLockID(changed), "a changed pin must change the id")

	devOnly := validLockfile()
	devOnly.Packages["mypy"] = lockedPkg("mypy", "1.8.0", "sha256:fff", true)
	assert.Equal(t, a, domain.GenerateLockID(devOnly), "dev packages must not influence the id")
}

func TestManifest_Validate(t *testing.T) {
	m := validManifest()
	require.NoError(t, m.Validate())

	m.DevDependencies["requests"] = ""
	err := m.Validate()
	require.ErrorIs(t, err, domain.ErrResolution)

	unnamed := &domain.Manifest{}
	require.ErrorIs(t, unnamed.Validate(), domain.ErrResolution)
}

func TestExecutionIdentity_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      domain.ExecutionIdentity
		wantErr bool
	}{
		{
			name: "non-root identity",
			id:   domain.ExecutionIdentity{User: domain.NewInternedString("svc"), UID: 1501, GID: 1501},
		},
		{
			name:    "root uid rejected",
			id:      domain.ExecutionIdentity{User: domain.NewInternedString("root"), UID: 0, GID: 0},
			wantErr: true,
		},
		{
			name:    "root gid rejected",
			id:      domain.ExecutionIdentity{User: domain.NewInternedString("svc"), UID: 1501, GID: 0},
			wantErr: true,
		},
		{
			name:    "missing user name",
			id:      domain.ExecutionIdentity{UID: 1501, GID: 1501},
			wantErr: true,
		},
		{
			name:    "negative ids rejected",
			id:      domain.ExecutionIdentity{User: domain.NewInternedString("svc"), UID: -1, GID: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrPrivilege)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPipelineState_Advance(t *testing.T) {
	tests := []struct {
		from    domain.PipelineState
		to      domain.PipelineState
		wantErr bool
	}{
		{domain.StateUnbuilt, domain.StateResolved, false},
		{domain.StateResolved, domain.StateAssembled, false},
		{domain.StateAssembled, domain.StateRunning, false},
		{domain.StateUnbuilt, domain.StateAssembled, true},
		{domain.StateUnbuilt, domain.StateRunning, true},
		{domain.StateResolved, domain.StateRunning, true},
		{domain.StateRunning, domain.StateResolved, true},
		{domain.StateAssembled, domain.StateResolved, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			next, err := tt.from.Advance(tt.to)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.Equal(t, tt.from, next, "a refused transition must not move the state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, next)
		})
	}
}

func TestLaunchSpec_ContractEnv(t *testing.T) {
	spec := &domain.LaunchSpec{
		Command:          []string{"run-service"},
		Unbuffered:       true,
		SuppressBytecode: true,
		Environment:      map[string]string{"TZ": "UTC"},
	}

	env := spec.ContractEnv("/srv/bot")
	assert.Equal(t, []string{
		"HALYARD_ENV_ROOT=/srv/bot/env",
		"HALYARD_NO_BYTECODE=1",
		"HALYARD_UNBUFFERED=1",
		"TZ=UTC",
	}, env, "contract env must be complete and sorted")

	spec.Unbuffered = false
	spec.SuppressBytecode = false
	env = spec.ContractEnv("/srv/bot")
	assert.NotContains(t, env, "HALYARD_UNBUFFERED=1")
	assert.NotContains(t, env, "HALYARD_NO_BYTECODE=1")

	assert.Equal(t, "/srv/bot/env/bin", spec.BinDir("/srv/bot"))
	assert.Equal(t, "/srv/bot/app", spec.WorkingDir("/srv/bot"))
}

func TestProbePolicy_Normalized(t *testing.T) {
	p := domain.ProbePolicy{}.Normalized()
	assert.Equal(t, domain.DefaultProbeInterval, p.Interval)
	assert.Equal(t, domain.DefaultProbeGrace, p.Grace)
	assert.Equal(t, domain.DefaultProbeTimeout, p.Timeout)
	assert.Equal(t, domain.DefaultProbeRetries, p.Retries)

	custom := domain.ProbePolicy{Interval: 1, Grace: 2, Timeout: 3, Retries: 4}
	assert.Equal(t, custom, custom.Normalized(), "explicit values survive normalization")
}

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("requests")
	b := domain.NewInternedString("requests")
	assert.Equal(t, a, b)
	assert.Equal(t, "requests", a.String())

	var zero domain.InternedString
	assert.Equal(t, "", zero.String())

	text, err := a.MarshalText()
	require.NoError(t, err)
	var back domain.InternedString
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, a, back)
}
