package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.halyard.dev/halyard/internal/core/ports"
)

const (
	NodeID         graft.ID = "adapter.config_loader"
	ManifestNodeID graft.ID = "adapter.manifest_loader"
)

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			return NewLoader(), nil
		},
	})

	graft.Register(graft.Node[ports.ManifestLoader]{
		ID:        ManifestNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ManifestLoader, error) {
			return NewLoader(), nil
		},
	})
}
