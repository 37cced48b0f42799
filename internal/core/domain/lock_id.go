package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateLockID creates a deterministic identifier for the production package
// set of a lockfile. Receipts are keyed by this ID, so an unchanged lockfile
// maps to the same environment across builds.
func GenerateLockID(l *Lockfile) string {
	var builder strings.Builder
	for _, pkg := range l.ProductionPackages() {
		builder.WriteString(pkg.Name.String())
		builder.WriteString("@")
		builder.WriteString(pkg.Version.String())
		builder.WriteString(":")
		builder.WriteString(pkg.Checksum)
		builder.WriteString(";")
	}

	hash := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(hash[:])
}
