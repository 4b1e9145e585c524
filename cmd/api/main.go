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

	"github.com/redis/go-redis/v9"
	"github.com/renova-habitat/gestion-api/internal/accounting"
	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/cache"
	"github.com/renova-habitat/gestion-api/internal/config"
	"github.com/renova-habitat/gestion-api/internal/database"
	"github.com/renova-habitat/gestion-api/internal/http/handler"
	"github.com/renova-habitat/gestion-api/internal/http/middleware"
	"github.com/renova-habitat/gestion-api/internal/http/router"
	"github.com/renova-habitat/gestion-api/internal/jobs"
	"github.com/renova-habitat/gestion-api/internal/logger"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %w", cfg.App.Timezone, err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Response cache, disabled unless redis is configured
	var cacheProvider cache.Provider = cache.Noop{}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		cacheProvider = cache.NewRedisProvider(client, cache.Config{TTL: cfg.Redis.TTLDuration()})
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// Optional read-only accounting export source
	accountingClient, err := accounting.NewClient(&cfg.Accounting, log)
	if err != nil {
		return fmt.Errorf("failed to initialize accounting client: %w", err)
	}
	defer func() { _ = accountingClient.Close() }()

	// Repositories
	orgRepo := repository.NewOrganizationRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Services
	statusConfig := service.NewStatusConfigService(settingRepo, log)
	dashboardService := service.NewDashboardService(leadRepo, projectRepo, quoteRepo, siteRepo, appointmentRepo, statusConfig, log, loc)
	revenueService := service.NewRevenueService(invoiceRepo, log, loc)
	feedService := service.NewActivityFeedService(leadRepo, quoteRepo, projectRepo, siteRepo, invoiceRepo, log)
	reportsService := service.NewReportsService(leadRepo, projectRepo, siteRepo, statusConfig, log, loc)
	leadService := service.NewLeadService(leadRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, log)
	siteService := service.NewSiteService(siteRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	warmup := jobs.NewWarmupJob(orgRepo, dashboardService, cacheProvider, log, cfg.Jobs.JobTimeoutDuration())
	if err := scheduler.AddJob("dashboard-warmup", cfg.Jobs.WarmupCron, warmup.Run); err != nil {
		return fmt.Errorf("failed to schedule warmup job: %w", err)
	}
	if accountingClient.IsEnabled() {
		sync := jobs.NewAccountingSyncJob(accountingClient, orgRepo, invoiceRepo, log, cfg.Jobs.JobTimeoutDuration())
		if err := scheduler.AddJob("accounting-sync", cfg.Jobs.AccountingSyncCron, sync.Run); err != nil {
			return fmt.Errorf("failed to schedule accounting sync job: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP layer
	authMiddleware := auth.NewMiddleware(auth.NewValidator(&cfg.Auth), log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		rateLimiter,
		handler.NewHealthHandler(db),
		handler.NewDashboardHandler(dashboardService, revenueService, feedService, cacheProvider, log),
		handler.NewReportsHandler(reportsService, cacheProvider, log),
		handler.NewLeadHandler(leadService, log),
		handler.NewQuoteHandler(quoteService, log),
		handler.NewSiteHandler(siteService, log),
		handler.NewInvoiceHandler(invoiceService, log),
		handler.NewSettingHandler(statusConfig, cacheProvider, log),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server",
			zap.Int("port", cfg.App.Port),
			zap.String("environment", cfg.App.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
