// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.halyard.dev/halyard/internal/adapters/config"
	_ "go.halyard.dev/halyard/internal/adapters/fs"
	_ "go.halyard.dev/halyard/internal/adapters/logger"
	_ "go.halyard.dev/halyard/internal/adapters/pkgstore"
	_ "go.halyard.dev/halyard/internal/adapters/shell"
	_ "go.halyard.dev/halyard/internal/adapters/supervisor"
	_ "go.halyard.dev/halyard/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.halyard.dev/halyard/internal/app"
	_ "go.halyard.dev/halyard/internal/engine/pipeline"
)
