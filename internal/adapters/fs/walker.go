// Package fs provides file system adapters for walking, hashing, copying,
// and verifying directory trees.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all files under root, skipping version control directories
// and any name matching the ignore patterns. Paths are yielded as returned by
// filepath.WalkDir, i.e. prefixed with root.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if skipAction := w.shouldSkipDir(d, ignores); skipAction != nil {
				return skipAction
			}

			if d.IsDir() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// shouldSkipDir checks if an entry should be skipped based on ignore patterns.
// Returns filepath.SkipDir for a skipped directory, nil otherwise.
func (w *Walker) shouldSkipDir(d fs.DirEntry, ignores []string) error {
	name := d.Name()

	if d.IsDir() && (name == ".git" || name == ".jj") {
		return filepath.SkipDir
	}

	for _, ignore := range ignores {
		matched, _ := filepath.Match(ignore, name)
		if matched && d.IsDir() {
			return filepath.SkipDir
		}
	}

	return nil
}
