//go:build wireinject
// +build wireinject

package di

import (
	"MacroLens/pkg/config"
	"MacroLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideSeriesStore,
		ProvideSeriesSource,
		ProvideCache,

		// Domain services
		ProvideAssessor,
		ProvideScanConfig,
		ProvideScanner,
		ProvideValuer,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
