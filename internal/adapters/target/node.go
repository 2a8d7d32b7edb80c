package target

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/lanebuild/lane/internal/core/ports"
)

// NodeID is the unique identifier for the target resolver Graft node.
const NodeID graft.ID = "adapter.target_resolver"

func init() {
	graft.Register(graft.Node[ports.TargetResolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.TargetResolver, error) {
			return New(), nil
		},
	})
}
