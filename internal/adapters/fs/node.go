package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.halyard.dev/halyard/internal/core/ports"
)

const (
	WalkerNodeID   graft.ID = "adapter.fs.walker"
	HasherNodeID   graft.ID = "adapter.fs.hasher"
	VerifierNodeID graft.ID = "adapter.fs.verifier"
	OwnerNodeID    graft.ID = "adapter.fs.owner"
	CopierNodeID   graft.ID = "adapter.fs.copier"
)

func init() {
	// Walker Node (concrete implementation needed by Hasher)
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	// Hasher Node
	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.Hasher, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(walker), nil
		},
	})

	// Verifier Node
	graft.Register(graft.Node[ports.Verifier]{
		ID:        VerifierNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Verifier, error) {
			return NewVerifier(), nil
		},
	})

	// Owner Node
	graft.Register(graft.Node[ports.Owner]{
		ID:        OwnerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Owner, error) {
			return SelectOwner(), nil
		},
	})

	// Copier Node
	graft.Register(graft.Node[*Copier]{
		ID:        CopierNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{OwnerNodeID},
		Run: func(ctx context.Context) (*Copier, error) {
			owner, err := graft.Dep[ports.Owner](ctx)
			if err != nil {
				return nil, err
			}
			return NewCopier(owner), nil
		},
	})
}
