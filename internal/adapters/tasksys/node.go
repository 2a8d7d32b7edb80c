package tasksys

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/lanebuild/lane/internal/adapters/shell"
	"github.com/lanebuild/lane/internal/core/ports"
)

// NodeID is the unique identifier for the task system builder Graft node.
const NodeID graft.ID = "adapter.tasksys"

func init() {
	graft.Register(graft.Node[ports.TaskSystemBuilder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.TaskSystemBuilder, error) {
			runner, err := graft.Dep[ports.ProcessRunner](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuilder(runner), nil
		},
	})
}
