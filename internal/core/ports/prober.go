package ports

import "context"

// Prober is the zero-argument liveness check invoked on a schedule by the
// supervisor. Success/failure only, no side effects.
//
//go:generate go run go.uber.org/mock/mockgen -source=prober.go -destination=mocks/mock_prober.go -package=mocks
type Prober interface {
	// Check reports whether the process is minimally responsive. A nil error
	// is success. The context carries the per-check timeout.
	Check(ctx context.Context) error
}
