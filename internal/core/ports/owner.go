package ports

// Owner applies filesystem ownership. Split out from the assembler so builds
// running without the privilege to chown (tests, unprivileged CI) can inject
// a recording or no-op implementation.
//
//go:generate go run go.uber.org/mock/mockgen -source=owner.go -destination=mocks/mock_owner.go -package=mocks
type Owner interface {
	// Chown assigns the numeric uid/gid to the given path.
	Chown(path string, uid, gid int) error
}
