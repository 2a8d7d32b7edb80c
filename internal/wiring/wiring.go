// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/lanebuild/lane/internal/adapters/archive"
	_ "github.com/lanebuild/lane/internal/adapters/binding"
	_ "github.com/lanebuild/lane/internal/adapters/cache"
	_ "github.com/lanebuild/lane/internal/adapters/config"
	_ "github.com/lanebuild/lane/internal/adapters/fs"
	_ "github.com/lanebuild/lane/internal/adapters/header"
	_ "github.com/lanebuild/lane/internal/adapters/locator"
	_ "github.com/lanebuild/lane/internal/adapters/logger"
	_ "github.com/lanebuild/lane/internal/adapters/shell"
	_ "github.com/lanebuild/lane/internal/adapters/target"
	_ "github.com/lanebuild/lane/internal/adapters/tasksys"
	_ "github.com/lanebuild/lane/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "github.com/lanebuild/lane/internal/app"
	_ "github.com/lanebuild/lane/internal/engine/pipeline"
)
