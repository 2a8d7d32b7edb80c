package binding

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/lanebuild/lane/internal/core/ports"
)

// NodeID is the unique identifier for the binding generator Graft node.
const NodeID graft.ID = "adapter.binding_generator"

func init() {
	graft.Register(graft.Node[ports.BindingGenerator]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.BindingGenerator, error) {
			return New(), nil
		},
	})
}
