package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/lanebuild/lane/internal/core/ports"
)

// NodeID is the unique identifier for the build record store Graft node.
const NodeID graft.ID = "adapter.record_store"

func init() {
	graft.Register(graft.Node[ports.StoreOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.StoreOpener, error) {
			return NewOpener(), nil
		},
	})
}
