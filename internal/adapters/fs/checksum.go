package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/zerr"
)

// ChecksumPrefix is the algorithm prefix carried by lockfile checksums.
const ChecksumPrefix = "sha256:"

// TreeChecksum computes the sha256 integrity checksum of a directory tree in
// "sha256:<hex>" form, matching the format pinned in lockfiles. Like the
// fingerprint, it hashes sorted relative paths plus contents.
func TreeChecksum(root string) (string, error) {
	walker := NewWalker()

	var paths []string
	for path := range walker.WalkFiles(root, nil) {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hasher := sha256.New()
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}
		_, _ = hasher.Write([]byte(filepath.ToSlash(rel)))
		_, _ = hasher.Write([]byte{0})

		f, err := os.Open(path) //nolint:gosec // Path comes from the walked tree
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
		}
		if _, err := io.Copy(hasher, f); err != nil {
			_ = f.Close()
			return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
		}
		_ = f.Close()
		_, _ = hasher.Write([]byte{0})
	}

	return ChecksumPrefix + hex.EncodeToString(hasher.Sum(nil)), nil
}
