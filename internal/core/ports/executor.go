package ports

import "context"

// Executor defines the interface for running external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command in the given working directory with the given
	// environment overlay applied on top of the process environment. PATH
	// entries in the overlay are prepended to the system PATH so overlay
	// binaries win.
	//
	// It returns an error if the command exits non-zero or cannot start.
	Execute(ctx context.Context, command []string, workdir string, env []string) error
}
