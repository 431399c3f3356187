package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/docs"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/database"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/http/handler"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/http/middleware"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/http/router"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/jobs"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/logger"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/observability"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title VDG Dashboard API
// @version 1.0
// @description Materials, projects and firm finances for a construction company

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Swagger UI calls the API on the host it was served from
	switch basicCfg.App.Environment {
	case "staging", "production":
		docs.SwaggerInfo.Host = ""
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In development secrets come from the environment, in staging/production from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var db *gorm.DB
	if cfg.DocStore.Mode == docstore.ModeDatabase || cfg.DocStore.Mode == "" {
		db, err = openDatabase(&cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()
	}

	store, err := docstore.NewStore(&cfg.DocStore, db, log)
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}
	log.Info("Document store initialized", zap.String("mode", cfg.DocStore.Mode))

	snapshotCache, err := cache.New(ctx, &cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer func() { _ = snapshotCache.Close() }()

	reportStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	// Repositories
	lookupRepo := repository.NewLookupRepository(store)
	materialRepo := repository.NewMaterialRepository(store, lookupRepo)
	projectRepo := repository.NewProjectRepository(store, lookupRepo, materialRepo)
	partnerRepo := repository.NewPartnerRepository(store)
	transactionRepo := repository.NewTransactionRepository(store, partnerRepo)

	// Services
	materialService := service.NewMaterialService(materialRepo, lookupRepo, snapshotCache, log)
	projectService := service.NewProjectService(projectRepo, materialRepo, lookupRepo, snapshotCache, log)
	transactionService := service.NewTransactionService(transactionRepo, partnerRepo, snapshotCache, log)
	partnerService := service.NewPartnerService(partnerRepo, snapshotCache, log)
	financeService := service.NewFinanceService(transactionRepo, partnerRepo, snapshotCache, log)
	lookupService := service.NewLookupService(lookupRepo, snapshotCache, log)
	dashboardService := service.NewDashboardService(materialRepo, projectRepo, transactionRepo, partnerRepo, snapshotCache, log)
	exportService := service.NewExportService(materialService, transactionRepo, financeService, log)

	// Background jobs are always registered so they can be triggered on demand
	scheduler := jobs.NewScheduler(log, metrics)
	financeReport := jobs.NewFinanceReportJob(exportService, reportStorage, log)
	if err := scheduler.AddJob(cfg.Jobs.BudgetReconcileSchedule, jobs.NewBudgetReconcileJob(projectService, materialService, metrics, log)); err != nil {
		return err
	}
	if err := scheduler.AddJob(cfg.Jobs.FinanceReportSchedule, financeReport); err != nil {
		return err
	}
	if cfg.Jobs.Enabled {
		scheduler.Start()
	} else {
		log.Info("Scheduled jobs disabled")
	}

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(lookupRepo, log),
		Material:    handler.NewMaterialHandler(materialService, log),
		Project:     handler.NewProjectHandler(projectService, log),
		Transaction: handler.NewTransactionHandler(transactionService, log),
		Partner:     handler.NewPartnerHandler(partnerService, log),
		Finance:     handler.NewFinanceHandler(financeService, log),
		Lookup:      handler.NewLookupHandler(lookupService, log),
		Dashboard:   handler.NewDashboardHandler(dashboardService, log),
		Export:      handler.NewExportHandler(exportService, log),
		Report:      handler.NewReportHandler(reportStorage, financeReport, scheduler, log),
	}

	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	rt := router.NewRouter(cfg, log, db, snapshotCache, metrics, auth.NewMiddleware(cfg, log), rateLimiter, handlers)

	var root http.Handler = rt.Setup()
	if timeout := cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		root = http.TimeoutHandler(root, timeout, "request timed out")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           root,
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}
		log.Info("Server stopped gracefully")
	}
	return nil
}

// openDatabase connects to the document database. sqlite has no goose migrations, so its
// schema is created in place.
func openDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Driver == "sqlite" {
		if err := docstore.NewGormStore(db).AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to create documents table: %w", err)
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Driver))
	return db, nil
}
