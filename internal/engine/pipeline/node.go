package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.halyard.dev/halyard/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.halyard.dev/halyard/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.halyard.dev/halyard/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.halyard.dev/halyard/internal/adapters/pkgstore"  //nolint:depguard // Wired in engine wiring
	"go.halyard.dev/halyard/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.halyard.dev/halyard/internal/core/ports"
)

// NodeID is the unique identifier for the pipeline Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Pipeline]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ManifestNodeID,
			pkgstore.NodeID,
			fs.HasherNodeID,
			fs.VerifierNodeID,
			fs.CopierNodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Pipeline, error) {
			manifests, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}

			installers, err := graft.Dep[*pkgstore.Factory](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}

			copier, err := graft.Dep[*fs.Copier](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewPipeline(manifests, installers, hasher, verifier, copier, tel, log), nil
		},
	})
}
