package locator

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/lanebuild/lane/internal/adapters/logger"
	"github.com/lanebuild/lane/internal/adapters/shell"
	"github.com/lanebuild/lane/internal/core/ports"
)

// NodeID is the unique identifier for the compiler locator Graft node.
const NodeID graft.ID = "adapter.compiler_locator"

func init() {
	graft.Register(graft.Node[ports.CompilerLocator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.CompilerLocator, error) {
			runner, err := graft.Dep[ports.ProcessRunner](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(runner, log), nil
		},
	})
}
