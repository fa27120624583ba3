package rest

import (
	"net/http"

	"safesite-backend/application/ports"
	"safesite-backend/application/services"
	"safesite-backend/infrastructure/config"
	"safesite-backend/interfaces/http/rest/handlers"
	"safesite-backend/interfaces/http/rest/middleware"
	"safesite-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg           *config.Config
	dynamic       *config.Watcher
	checklists    *services.ChecklistService
	submissions   *services.SubmissionService
	records       ports.RecordStore
	authenticator ports.Authenticator
	capabilities  ports.CapabilityProvider
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	dynamic *config.Watcher,
	checklists *services.ChecklistService,
	submissions *services.SubmissionService,
	records ports.RecordStore,
	authenticator ports.Authenticator,
	capabilities ports.CapabilityProvider,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		dynamic:       dynamic,
		checklists:    checklists,
		submissions:   submissions,
		records:       records,
		authenticator: authenticator,
		capabilities:  capabilities,
		metrics:       metrics,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.safesite.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.cfg.EnableMetrics {
		router.Handle("/metrics", observability.Handler())
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.authenticator))
		if rt.cfg.EnableMetrics {
			r.Use(middleware.Metrics(rt.metrics))
		}

		// Template catalog
		r.Route("/templates", func(r chi.Router) {
			templateHandler := handlers.NewTemplateHandler(rt.checklists, rt.logger)
			r.Get("/", templateHandler.ListTemplates)
			r.Get("/{templateID}", templateHandler.GetTemplate)
		})

		submissionHandler := handlers.NewSubmissionHandler(rt.submissions, rt.records, rt.metrics, rt.logger)

		// Live checklist state and mutations
		r.Route("/checklists/{templateID}", func(r chi.Router) {
			checklistHandler := handlers.NewChecklistHandler(rt.checklists, rt.dynamic, rt.logger)
			r.Get("/", checklistHandler.GetState)
			r.Get("/progress", checklistHandler.GetProgress)

			r.Route("/items/{itemID}", func(r chi.Router) {
				r.Put("/value", checklistHandler.SetValue)
				r.Put("/notes", checklistHandler.SetNotes)
				r.Put("/deadline", checklistHandler.SetDeadline)
				r.Post("/flag", checklistHandler.ToggleFlag)
				r.Post("/images", checklistHandler.AddImages)
				r.Delete("/images/{index}", checklistHandler.RemoveImage)
				r.Post("/blueprints", checklistHandler.AddBlueprints)
			})
			r.Delete("/blueprints/{blueprintID}", checklistHandler.RemoveBlueprint)

			// Saved snapshots
			historyHandler := handlers.NewHistoryHandler(rt.checklists, rt.logger)
			r.Post("/save", historyHandler.Save)
			r.Get("/history", historyHandler.List)
			r.Post("/restore", historyHandler.Restore)

			// Submission pipeline
			r.Post("/submit", submissionHandler.Submit)
		})

		// Submitted report records
		r.Get("/records", submissionHandler.ListRecords)

		// Deployment capabilities
		r.Get("/capabilities", handlers.NewCapabilityHandler(rt.capabilities).GetCapabilities)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
