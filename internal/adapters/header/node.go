package header

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/lanebuild/lane/internal/core/ports"
)

// NodeID is the unique identifier for the header parser Graft node.
const NodeID graft.ID = "adapter.header_parser"

// MergerNodeID is the unique identifier for the header merger Graft node.
const MergerNodeID graft.ID = "adapter.header_merger"

func init() {
	graft.Register(graft.Node[ports.HeaderParser]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.HeaderParser, error) {
			return NewParser(), nil
		},
	})

	graft.Register(graft.Node[ports.HeaderMerger]{
		ID:        MergerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.HeaderMerger, error) {
			return NewMerger(), nil
		},
	})
}
