package di

import (
	"context"
	"net/http"

	"safesite-backend/application/ports"
	"safesite-backend/application/services"
	"safesite-backend/domain/checklist"
	"safesite-backend/infrastructure/ai"
	"safesite-backend/infrastructure/config"
	"safesite-backend/infrastructure/messaging"
	"safesite-backend/infrastructure/persistence/kv"
	"safesite-backend/infrastructure/persistence/memory"
	supa "safesite-backend/infrastructure/supabase"
	"safesite-backend/interfaces/http/rest/middleware"
	"safesite-backend/pkg/observability"

	supasdk "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates the application logger from the configured level.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideDynamicConfig starts the hot-reloading limits watcher.
func ProvideDynamicConfig(cfg *config.Config, logger *zap.Logger) (*config.Watcher, error) {
	return config.NewWatcher(cfg.DynamicConfigPath, logger)
}

// ProvideCatalog builds the template catalog: the built-in templates,
// optionally overlaid with a site-specific catalog file.
func ProvideCatalog(cfg *config.Config, logger *zap.Logger) (*checklist.Catalog, error) {
	catalog := checklist.BuiltinCatalog()
	if cfg.TemplateCatalogPath == "" {
		return catalog, nil
	}

	merged, err := checklist.LoadCatalogFile(cfg.TemplateCatalogPath, catalog)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded template catalog overlay",
		zap.String("path", cfg.TemplateCatalogPath),
		zap.Int("templates", len(merged.List())),
	)
	return merged, nil
}

// ProvideEventBus creates the notification bus with the log subscriber
// already attached.
func ProvideEventBus(logger *zap.Logger) ports.EventBus {
	notifier := messaging.NewNotifier(logger)
	notifier.Subscribe(messaging.LogSubscriber(logger))
	return notifier
}

// ProvideSupabaseClient connects to the hosted backend, or returns nil
// when it is not configured and the in-memory fallbacks apply.
func ProvideSupabaseClient(cfg *config.Config) (*supasdk.Client, error) {
	if !cfg.UseSupabase() {
		return nil, nil
	}
	return supa.NewClient(supa.Config{
		URL:            cfg.SupabaseURL,
		ServiceRoleKey: cfg.SupabaseServiceRoleKey,
		KVTable:        cfg.SupabaseKVTable,
		ResponsesTable: cfg.SupabaseResponsesTable,
		Bucket:         cfg.SupabaseBucket,
	})
}

// ProvideKVStore selects the key-value side-channel backend.
func ProvideKVStore(cfg *config.Config, client *supasdk.Client) kv.Store {
	if client != nil {
		return supa.NewKVStore(client, cfg.SupabaseKVTable)
	}
	return memory.NewKVStore()
}

// ProvideSnapshotStore wraps the key-value store with the typed
// snapshot interface.
func ProvideSnapshotStore(store kv.Store, logger *zap.Logger) ports.SnapshotStore {
	return kv.NewSnapshotStore(store, logger)
}

// ProvideBlobStore selects the blueprint storage backend.
func ProvideBlobStore(cfg *config.Config, client *supasdk.Client, logger *zap.Logger) ports.BlobStore {
	if client != nil {
		return supa.NewBlobStore(client, cfg.SupabaseBucket, logger)
	}
	return memory.NewBlobStore()
}

// ProvideRecordStore selects the submitted-checklist record backend.
func ProvideRecordStore(cfg *config.Config, client *supasdk.Client) ports.RecordStore {
	if client != nil {
		return supa.NewRecordStore(client, cfg.SupabaseResponsesTable)
	}
	return memory.NewRecordStore()
}

// ProvideAuthenticator selects the identity backend. Without Supabase
// the development authenticator accepts any non-empty token.
func ProvideAuthenticator(client *supasdk.Client, logger *zap.Logger) ports.Authenticator {
	if client != nil {
		return supa.NewAuthenticator(client, logger)
	}
	return memory.NewAuthenticator()
}

// ProvideAIProvider creates the generative model client, falling back to
// the deterministic mock when no API key is configured.
func ProvideAIProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ai.Provider, error) {
	if cfg.GenAIAPIKey == "" {
		logger.Warn("no generative AI key configured, using mock provider")
		return ai.NewMockProvider(), nil
	}
	return ai.NewGenAIProvider(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, logger)
}

// ProvideAnalysisService binds the model provider to the analysis ports.
func ProvideAnalysisService(provider ai.Provider, dynamic *config.Watcher, logger *zap.Logger) *ai.Service {
	return ai.NewService(provider, dynamic, logger)
}

// ProvideTextAnalyzer exposes the analysis service as its port.
func ProvideTextAnalyzer(svc *ai.Service) ports.TextAnalyzer { return svc }

// ProvideRiskProfiler exposes the analysis service as its port.
func ProvideRiskProfiler(svc *ai.Service) ports.RiskProfiler { return svc }

// ProvideSafetyAnalyzer exposes the analysis service as its port.
func ProvideSafetyAnalyzer(svc *ai.Service) ports.SafetyAnalyzer { return svc }

// ProvideMultiModalAnalyzer exposes the analysis service as its port.
func ProvideMultiModalAnalyzer(svc *ai.Service) ports.MultiModalAnalyzer { return svc }

// ProvideChecklistService creates the response lifecycle service.
func ProvideChecklistService(
	catalog *checklist.Catalog,
	snapshots ports.SnapshotStore,
	blobs ports.BlobStore,
	bus ports.EventBus,
	logger *zap.Logger,
) *services.ChecklistService {
	return services.NewChecklistService(catalog, snapshots, blobs, bus, logger)
}

// ProvideSubmissionService creates the report generation pipeline.
func ProvideSubmissionService(
	checklists *services.ChecklistService,
	text ports.TextAnalyzer,
	risk ports.RiskProfiler,
	analyzer ports.SafetyAnalyzer,
	multimodal ports.MultiModalAnalyzer,
	records ports.RecordStore,
	bus ports.EventBus,
	logger *zap.Logger,
) *services.SubmissionService {
	return services.NewSubmissionService(checklists, text, risk, analyzer, multimodal, records, bus, logger)
}

// ProvideCapabilityProvider advertises the configured media integrations.
func ProvideCapabilityProvider(cfg *config.Config) ports.CapabilityProvider {
	return staticCapabilities{
		caps: ports.MediaCapability{
			Camera:    cfg.CameraEnabled,
			Clipboard: cfg.ClipboardEnabled,
			Share:     cfg.ShareEnabled,
		},
	}
}

type staticCapabilities struct {
	caps ports.MediaCapability
}

func (s staticCapabilities) Capabilities() ports.MediaCapability { return s.caps }

// ProvideMetrics creates the Prometheus registry bindings.
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideAuthMiddleware builds the bearer-token middleware.
func ProvideAuthMiddleware(authenticator ports.Authenticator) func(http.Handler) http.Handler {
	return middleware.Authenticate(authenticator)
}
