package config

import (
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Halfile represents the structure of the halyard.yaml configuration file.
type Halfile struct {
	Version      string       `yaml:"version"`
	Manifest     string       `yaml:"manifest"`
	Lockfile     string       `yaml:"lockfile"`
	Source       string       `yaml:"source"`
	Store        string       `yaml:"store"`
	Output       string       `yaml:"output"`
	Work         string       `yaml:"work"`
	WritableDirs []string     `yaml:"writableDirs"`
	Identity     IdentityDTO  `yaml:"identity"`
	Runtime      RuntimeDTO   `yaml:"runtime"`
	Probe        ProbeDTO     `yaml:"probe"`
	Installer    InstallerDTO `yaml:"installer"`
}

// IdentityDTO declares the non-root execution identity.
type IdentityDTO struct {
	User string `yaml:"user"`
	UID  int    `yaml:"uid"`
	GID  int    `yaml:"gid"`
}

// RuntimeDTO declares the launch contract for the service process.
type RuntimeDTO struct {
	Command          []string          `yaml:"cmd"`
	Unbuffered       *bool             `yaml:"unbuffered"`
	SuppressBytecode *bool             `yaml:"suppressBytecode"`
	Environment      map[string]string `yaml:"environment"`
}

// ProbeDTO declares the liveness probe schedule.
type ProbeDTO struct {
	Command  []string `yaml:"cmd"`
	Interval Duration `yaml:"interval"`
	Grace    Duration `yaml:"grace"`
	Timeout  Duration `yaml:"timeout"`
	Retries  int      `yaml:"retries"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "60s".
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "invalid duration"), "value", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// InstallerDTO declares how the dependency environment is materialized.
type InstallerDTO struct {
	Command   []string `yaml:"cmd"`
	CacheDirs []string `yaml:"cacheDirs"`
}

// ManifestDTO represents the manifest.yaml file.
type ManifestDTO struct {
	Name            string            `yaml:"name"`
	Dependencies    map[string]string `yaml:"dependencies"`
	DevDependencies map[string]string `yaml:"devDependencies"`
}

// LockfileDTO represents the halyard.lock file.
type LockfileDTO struct {
	Version  int                         `yaml:"version"`
	Packages map[string]LockedPackageDTO `yaml:"packages"`
}

// LockedPackageDTO represents one pinned package entry.
type LockedPackageDTO struct {
	Version  string `yaml:"version"`
	Checksum string `yaml:"checksum"`
	Dev      bool   `yaml:"dev"`
}
