//go:build wireinject
// +build wireinject

package provider

import (
	"github.com/google/wire"
	"github.com/spoton-app/spoton/app"
	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/data"
	"github.com/spoton-app/spoton/logging/logger"
	"github.com/spoton-app/spoton/server"
)

// InitializeApp wires up the entire application with all dependencies.
func InitializeApp(src config.Source) (*app.App, func(), error) {
	panic(wire.Build(
		// Config provider
		config.ProviderSet,

		// Logger provider
		logger.ProviderSet,

		// Database engine provider
		data.ProviderSet,

		// HTTP handler provider
		server.ProviderSet,

		// Lifecycle hooks
		provideHooks,

		// Application constructor
		app.New,
	))
}

// InitializeEngine wires the database engine alone, for out-of-band tools.
func InitializeEngine(src config.Source) (*data.Engine, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		logger.ProviderSet,
		data.ProviderSet,
	))
}
