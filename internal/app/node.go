package app

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/lanebuild/lane/internal/adapters/binding" //nolint:depguard // Wired in app layer
	"github.com/lanebuild/lane/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"github.com/lanebuild/lane/internal/adapters/locator" //nolint:depguard // Wired in app layer
	"github.com/lanebuild/lane/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"github.com/lanebuild/lane/internal/adapters/target"  //nolint:depguard // Wired in app layer
	"github.com/lanebuild/lane/internal/core/ports"
	"github.com/lanebuild/lane/internal/engine/pipeline"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			locator.NodeID,
			target.NodeID,
			pipeline.NodeID,
			binding.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			loc, err := graft.Dep[ports.CompilerLocator](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.TargetResolver](ctx)
			if err != nil {
				return nil, err
			}

			pipe, err := graft.Dep[*pipeline.Pipeline](ctx)
			if err != nil {
				return nil, err
			}

			binder, err := graft.Dep[ports.BindingGenerator](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, loc, resolver, pipe, binder, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:       application,
				Logger:    log,
				Telemetry: tel,
			}, nil
		},
	})
}
