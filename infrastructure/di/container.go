package di

import (
	"net/http"

	"safesite-backend/application/ports"
	"safesite-backend/application/services"
	"safesite-backend/domain/checklist"
	"safesite-backend/infrastructure/config"
	"safesite-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	DynamicConfig     *config.Watcher
	Catalog           *checklist.Catalog
	EventBus          ports.EventBus
	SnapshotStore     ports.SnapshotStore
	BlobStore         ports.BlobStore
	RecordStore       ports.RecordStore
	Authenticator     ports.Authenticator
	ChecklistService  *services.ChecklistService
	SubmissionService *services.SubmissionService
	Capabilities      ports.CapabilityProvider
	Metrics           *observability.Metrics
	AuthMiddleware    func(http.Handler) http.Handler
}

// Shutdown releases background resources held by the container.
func (c *Container) Shutdown() {
	if c.DynamicConfig != nil {
		c.DynamicConfig.Stop()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
