package supervisor

import (
	"syscall"
	"testing"

	"go.halyard.dev/halyard/internal/core/domain"
)

// CredentialFor exposes credentialFor for tests.
func CredentialFor(id domain.ExecutionIdentity, euid int) (*syscall.Credential, error) {
	return credentialFor(id, euid)
}

// StubEUID pins the effective uid seen by the launcher for the duration of a
// test.
func StubEUID(t *testing.T, euid int) {
	t.Helper()
	prev := currentEUID
	currentEUID = func() int { return euid }
	t.Cleanup(func() { currentEUID = prev })
}
