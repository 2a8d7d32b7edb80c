package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/lanebuild/lane/internal/adapters/archive"            //nolint:depguard // Wired in engine wiring
	"github.com/lanebuild/lane/internal/adapters/cache"              //nolint:depguard // Wired in engine wiring
	"github.com/lanebuild/lane/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"github.com/lanebuild/lane/internal/adapters/header"             //nolint:depguard // Wired in engine wiring
	"github.com/lanebuild/lane/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"github.com/lanebuild/lane/internal/adapters/shell"              //nolint:depguard // Wired in engine wiring
	"github.com/lanebuild/lane/internal/adapters/tasksys"            //nolint:depguard // Wired in engine wiring
	"github.com/lanebuild/lane/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"github.com/lanebuild/lane/internal/core/ports"
)

// NodeID is the unique identifier for the pipeline Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Pipeline]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			fs.NodeID,
			cache.NodeID,
			archive.NodeID,
			header.NodeID,
			header.MergerNodeID,
			tasksys.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Pipeline, error) {
			runner, err := graft.Dep[ports.ProcessRunner](ctx)
			if err != nil {
				return nil, err
			}

			prints, err := graft.Dep[ports.Fingerprinter](ctx)
			if err != nil {
				return nil, err
			}

			stores, err := graft.Dep[ports.StoreOpener](ctx)
			if err != nil {
				return nil, err
			}

			archiver, err := graft.Dep[ports.Archiver](ctx)
			if err != nil {
				return nil, err
			}

			parser, err := graft.Dep[ports.HeaderParser](ctx)
			if err != nil {
				return nil, err
			}

			merger, err := graft.Dep[ports.HeaderMerger](ctx)
			if err != nil {
				return nil, err
			}

			taskSys, err := graft.Dep[ports.TaskSystemBuilder](ctx)
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

			return New(runner, prints, stores, archiver, parser, merger, taskSys, tel, log), nil
		},
	})
}
