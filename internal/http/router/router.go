package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	_ "github.com/SanekxArcs/vdg-app-demo-sub000/docs" // registers the OpenAPI document
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/database"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/http/handler"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/http/middleware"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/observability"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Auth        *handler.AuthHandler
	Material    *handler.MaterialHandler
	Project     *handler.ProjectHandler
	Transaction *handler.TransactionHandler
	Partner     *handler.PartnerHandler
	Finance     *handler.FinanceHandler
	Lookup      *handler.LookupHandler
	Dashboard   *handler.DashboardHandler
	Export      *handler.ExportHandler
	Report      *handler.ReportHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	cache          *cache.Cache
	metrics        *observability.Metrics
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

// NewRouter wires the router. db may be nil when documents live on the hosted platform;
// cache and metrics may be nil when disabled.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	cache *cache.Cache,
	metrics *observability.Metrics,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		cache:          cache,
		metrics:        metrics,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(rt.metrics.Middleware)
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Metrics.Enabled {
		r.Handle(rt.cfg.Metrics.Path, rt.metrics.Handler())
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.handlers
	adminOnly := rt.authMiddleware.RequireRole(auth.RoleAdmin, auth.RoleService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)

		r.Get("/auth/me", h.Auth.Me)

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", h.Material.List)
			r.Post("/", h.Material.Create)
			r.Get("/low-stock", h.Material.LowStock)
			r.Get("/{id}", h.Material.GetByID)
			r.Put("/{id}", h.Material.Update)
			r.Delete("/{id}", h.Material.Delete)
			r.Patch("/{id}/quantity", h.Material.AdjustQuantity)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.Project.List)
			r.Post("/", h.Project.Create)
			r.Get("/{id}", h.Project.GetByID)
			r.Put("/{id}", h.Project.Update)
			r.Delete("/{id}", h.Project.Delete)

			r.Post("/{id}/materials", h.Project.AddMaterial)
			r.Put("/{id}/materials/{key}", h.Project.UpdateMaterial)
			r.Delete("/{id}/materials/{key}", h.Project.RemoveMaterial)

			r.Get("/{id}/costs", h.Project.Costs)
			r.Post("/{id}/costs", h.Project.AddCost)
			r.Delete("/{id}/costs/{key}", h.Project.RemoveCost)
			r.Post("/{id}/recalculate", h.Project.Recalculate)

			r.Post("/{id}/timeline", h.Project.AddTimelineEvent)
			r.Delete("/{id}/timeline/{key}", h.Project.RemoveTimelineEvent)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.Transaction.List)
			r.Post("/", h.Transaction.Create)
			r.Get("/{id}", h.Transaction.GetByID)
			r.Put("/{id}", h.Transaction.Update)
			r.Delete("/{id}", h.Transaction.Delete)
		})

		r.Route("/partners", func(r chi.Router) {
			r.Get("/", h.Partner.List)
			r.Get("/{id}", h.Partner.GetByID)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", h.Partner.Create)
				r.Put("/{id}", h.Partner.Update)
				r.Delete("/{id}", h.Partner.Delete)
			})
		})

		r.Route("/finance", func(r chi.Router) {
			r.Get("/summary", h.Finance.Summary)
			r.Get("/partners/{id}/share", h.Finance.PartnerShare)
		})

		r.Route("/lookups/{kind}", func(r chi.Router) {
			r.Get("/", h.Lookup.List)
			r.Post("/", h.Lookup.Create)
			r.Put("/{id}", h.Lookup.Update)
			r.Delete("/{id}", h.Lookup.Delete)
		})

		r.Get("/dashboard", h.Dashboard.Get)

		r.Route("/export", func(r chi.Router) {
			r.Get("/materials.xlsx", h.Export.Materials)
			r.Get("/finance.xlsx", h.Export.Finance)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.Report.List)
			r.Get("/{name}", h.Report.Download)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/finance", h.Report.GenerateFinance)
				r.Delete("/{name}", h.Report.Delete)
			})
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", h.Report.ListJobs)
			r.Post("/{name}/run", h.Report.RunJob)
		})
	})

	return r
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	if rt.db == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "skipped",
			"service": "database",
		})
		return
	}

	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats": map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		},
	})
}

// readiness checks every configured dependency
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	check := func(name string, err error) {
		if err != nil {
			rt.logger.Error("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
			return
		}
		checks[name] = map[string]interface{}{"status": "healthy"}
	}

	if rt.db != nil {
		check("database", database.HealthCheck(rt.db))
	}
	if rt.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		check("cache", rt.cache.Ping(ctx))
		cancel()
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
