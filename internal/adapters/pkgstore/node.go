package pkgstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.halyard.dev/halyard/internal/adapters/shell"
	"go.halyard.dev/halyard/internal/core/ports"
)

const NodeID graft.ID = "adapter.installer_factory"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(executor), nil
		},
	})
}
