package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.halyard.dev/halyard/internal/adapters/config"
	adapterfs "go.halyard.dev/halyard/internal/adapters/fs"
	"go.halyard.dev/halyard/internal/adapters/logger"
	"go.halyard.dev/halyard/internal/adapters/pkgstore"
	"go.halyard.dev/halyard/internal/adapters/shell"
	"go.halyard.dev/halyard/internal/adapters/supervisor"
	"go.halyard.dev/halyard/internal/adapters/telemetry"
	"go.halyard.dev/halyard/internal/app"
	"go.halyard.dev/halyard/internal/engine/pipeline"
)

func testProvider(t *testing.T) ComponentProvider {
	t.Helper()

	log := logger.New()
	if l, ok := log.(*logger.Logger); ok {
		l.SetOutput(io.Discard)
	}
	loader := config.NewLoader()
	executor := shell.NewExecutor(log)
	pipe := pipeline.NewPipeline(
		loader,
		pkgstore.NewFactory(executor),
		adapterfs.NewHasher(adapterfs.NewWalker()),
		adapterfs.NewVerifier(),
		adapterfs.NewCopier(adapterfs.NewNoopOwner()),
		telemetry.NewNoOp(),
		log,
	)
	application := app.New(loader, pipe, supervisor.NewLauncher(log), executor, log)

	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:          application,
			Logger:       log,
			ConfigLoader: loader,
		}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	stderr := new(bytes.Buffer)

	exitCode := run(context.Background(), []string{"version"}, stderr, testProvider(t))
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 when the command execution fails.
func TestRun_ExecutionError(t *testing.T) {
	stderr := new(bytes.Buffer)

	// No halyard.yaml exists in the working directory.
	exitCode := run(context.Background(), []string{"status", "-c", "does-not-exist.yaml"}, stderr, testProvider(t))
	assert.Equal(t, 1, exitCode)
}
