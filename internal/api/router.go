package api

import (
	"encoding/json"
	"net/http"

	"github.com/courseforge/courseforge/internal/api/handlers"
	mw "github.com/courseforge/courseforge/internal/api/middleware"
	"github.com/courseforge/courseforge/internal/config"
	"github.com/courseforge/courseforge/internal/docstore"
	"github.com/courseforge/courseforge/internal/domain"
	"github.com/courseforge/courseforge/internal/events"
	"github.com/courseforge/courseforge/internal/provision"
	"github.com/courseforge/courseforge/internal/registry"
	"github.com/courseforge/courseforge/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App wires the router, the tenant manager and the event bus together for
// lifecycle management from main.
type App struct {
	Router  *chi.Mux
	Manager *service.TenantManager
	Bus     *events.Bus
}

func NewApp(store *docstore.Store, logger *zap.Logger) *App {
	reg := registry.New()
	bus := events.NewBus()

	cloner := provision.NewGitCloner(
		config.FrameworkRepository(),
		config.FrameworkRevision(),
		logger,
	)
	provisioner := provision.New(
		config.ServerRoot(),
		config.FrameworkDir(),
		config.TempDir(),
		cloner,
		logger,
	)

	manager := service.NewTenantManager(store, reg, provisioner, bus, service.Defaults{
		MasterDBName: config.MasterDBName(),
		DBHost:       config.DBHost(),
		DBUser:       config.DBUser(),
		DBPass:       config.DBPass(),
		DBPort:       config.DBPort(),
	}, logger)

	tenantHandler := handlers.NewTenantHandler(manager)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Metrics)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no tenant routing)
	r.Get("/health", healthHandler(store))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/tenant", func(r chi.Router) {
		r.Post("/", tenantHandler.Create)
		r.Get("/", tenantHandler.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", tenantHandler.Get)
			r.Put("/", tenantHandler.Update)
			r.Delete("/", tenantHandler.Destroy)
		})
	})

	return &App{
		Router:  r,
		Manager: manager,
		Bus:     bus,
	}
}

func healthHandler(store *docstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// Ensure implementations satisfy their interfaces at compile time.
var (
	_ domain.DocumentStore        = (*docstore.Store)(nil)
	_ domain.WorkspaceProvisioner = (*provision.Provisioner)(nil)
	_ provision.FrameworkCloner   = (*provision.GitCloner)(nil)
)
