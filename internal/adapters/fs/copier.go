package fs

import (
	"io"
	"os"
	"path/filepath"

	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
)

// Copier copies directory trees, applying ownership to each entry as it is
// created. Ownership is assigned exactly once at copy time; there is no later
// recursive chown pass.
type Copier struct {
	owner ports.Owner
}

// NewCopier creates a new Copier that assigns ownership via the given Owner.
func NewCopier(owner ports.Owner) *Copier {
	return &Copier{owner: owner}
}

// CopyTree copies src into dst recursively. dst is created if absent. Every
// created directory and file is chowned to uid/gid before the next entry is
// processed.
func (c *Copier) CopyTree(src, dst string, uid, gid int) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat source"), "path", src)
	}
	if !srcInfo.IsDir() {
		return zerr.With(zerr.New("source is not a directory"), "path", src)
	}

	if err := c.makeOwnedDir(dst, srcInfo.Mode().Perm(), uid, gid); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read source directory"), "path", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := c.CopyTree(srcPath, dstPath, uid, gid); err != nil {
				return err
			}
			continue
		}

		if err := c.copyFile(srcPath, dstPath, uid, gid); err != nil {
			return err
		}
	}

	return nil
}

// MakeOwnedDir creates a directory (parents included) with the given mode and
// ownership. Existing directories are left in place, making re-assembly
// idempotent, but ownership is still asserted.
func (c *Copier) MakeOwnedDir(path string, perm os.FileMode, uid, gid int) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", path)
	}
	// MkdirAll keeps the existing mode for pre-existing dirs; enforce ours.
	if err := os.Chmod(path, perm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set directory mode"), "path", path)
	}
	if err := c.owner.Chown(path, uid, gid); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to assign directory ownership"), "path", path)
	}
	return nil
}

func (c *Copier) makeOwnedDir(path string, perm os.FileMode, uid, gid int) error {
	return c.MakeOwnedDir(path, perm, uid, gid)
}

func (c *Copier) copyFile(src, dst string, uid, gid int) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", src)
	}

	in, err := os.Open(src) //nolint:gosec // Path comes from the walked tree
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	//nolint:gosec // Destination is inside the staging directory
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", dst)
	}

	if err := c.owner.Chown(dst, uid, gid); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to assign file ownership"), "path", dst)
	}
	return nil
}

// ChownOwner applies real filesystem ownership via os.Chown.
type ChownOwner struct{}

// NewChownOwner creates an Owner backed by os.Chown.
func NewChownOwner() *ChownOwner {
	return &ChownOwner{}
}

// Chown assigns the numeric uid/gid to the given path.
func (o *ChownOwner) Chown(path string, uid, gid int) error {
	return os.Chown(path, uid, gid)
}

// NoopOwner skips ownership assignment. Used when the build runs without the
// privilege to chown; the image build then relies on the builder's identity
// already matching the execution identity.
type NoopOwner struct{}

// NewNoopOwner creates a no-op Owner.
func NewNoopOwner() *NoopOwner {
	return &NoopOwner{}
}

// Chown does nothing.
func (o *NoopOwner) Chown(string, int, int) error {
	return nil
}

// SelectOwner returns the real Owner when running privileged and the no-op
// Owner otherwise.
func SelectOwner() ports.Owner {
	if os.Geteuid() == 0 {
		return NewChownOwner()
	}
	return NewNoopOwner()
}

var _ ports.Owner = (*ChownOwner)(nil)
var _ ports.Owner = (*NoopOwner)(nil)
