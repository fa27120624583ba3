//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"safesite-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDynamicConfig,
	ProvideCatalog,
	ProvideEventBus,
	ProvideSupabaseClient,
	ProvideKVStore,
	ProvideSnapshotStore,
	ProvideBlobStore,
	ProvideRecordStore,
	ProvideAuthenticator,
	ProvideAIProvider,
	ProvideAnalysisService,
	ProvideTextAnalyzer,
	ProvideRiskProfiler,
	ProvideSafetyAnalyzer,
	ProvideMultiModalAnalyzer,
	ProvideChecklistService,
	ProvideSubmissionService,
	ProvideCapabilityProvider,
	ProvideMetrics,
	ProvideAuthMiddleware,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
