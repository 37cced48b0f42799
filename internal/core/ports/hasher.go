package ports

// Hasher computes deterministic content fingerprints.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileHash computes the content hash of a single file.
	ComputeFileHash(path string) (uint64, error)

	// ComputeTreeHash computes a single deterministic hash over a directory
	// tree: relative paths and file contents, walked in sorted order. Equal
	// trees produce equal hashes regardless of filesystem iteration order.
	ComputeTreeHash(root string) (string, error)
}
