// Package supervisor implements the runtime supervisor contract: identity
// drop, contract environment, process launch, and liveness monitoring.
package supervisor

import (
	"os"
	"syscall"

	"go.halyard.dev/halyard/internal/core/domain"
	"go.trai.ch/zerr"
)

// credentialFor decides how the process reaches the execution identity before
// any application code runs. Returns a nil credential when the current
// effective identity already matches; a drop credential when running
// privileged; an error in every other case.
func credentialFor(id domain.ExecutionIdentity, euid int) (*syscall.Credential, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	switch {
	case euid == id.UID:
		return nil, nil
	case euid == 0:
		return &syscall.Credential{
			Uid: uint32(id.UID), //nolint:gosec // Validate rejects negative ids
			Gid: uint32(id.GID), //nolint:gosec // Validate rejects negative ids
		}, nil
	default:
		err := zerr.Wrap(domain.ErrPrivilege, "cannot assume execution identity from current effective uid")
		err = zerr.With(err, "euid", euid)
		return nil, zerr.With(err, "target_uid", id.UID)
	}
}

// currentEUID is swappable in tests.
var currentEUID = os.Geteuid
