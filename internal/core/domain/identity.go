package domain

import "go.trai.ch/zerr"

// ExecutionIdentity is the non-privileged user/group pair that owns the
// runtime root and runs the service. It is fixed at build time and never
// changes at runtime.
type ExecutionIdentity struct {
	// User is the symbolic user name (e.g., "svc").
	User InternedString

	// UID is the fixed numeric user id.
	UID int

	// GID is the fixed numeric group id.
	GID int
}

// Validate rejects privileged or malformed identities. Running the service as
// the build-time privileged identity is a policy violation, so uid/gid 0 is
// refused up front rather than detected at serve time.
func (id ExecutionIdentity) Validate() error {
	if id.User.String() == "" {
		return zerr.Wrap(ErrPrivilege, "execution identity has no user name")
	}
	if id.UID <= 0 || id.GID <= 0 {
		err := zerr.Wrap(ErrPrivilege, "execution identity must be non-root with fixed numeric ids")
		err = zerr.With(err, "uid", id.UID)
		return zerr.With(err, "gid", id.GID)
	}
	return nil
}
