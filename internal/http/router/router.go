package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/config"
	"github.com/renova-habitat/gestion-api/internal/http/handler"
	"github.com/renova-habitat/gestion-api/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	healthHandler    *handler.HealthHandler
	dashboardHandler *handler.DashboardHandler
	reportsHandler   *handler.ReportsHandler
	leadHandler      *handler.LeadHandler
	quoteHandler     *handler.QuoteHandler
	siteHandler      *handler.SiteHandler
	invoiceHandler   *handler.InvoiceHandler
	settingHandler   *handler.SettingHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	dashboardHandler *handler.DashboardHandler,
	reportsHandler *handler.ReportsHandler,
	leadHandler *handler.LeadHandler,
	quoteHandler *handler.QuoteHandler,
	siteHandler *handler.SiteHandler,
	invoiceHandler *handler.InvoiceHandler,
	settingHandler *handler.SettingHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		healthHandler:    healthHandler,
		dashboardHandler: dashboardHandler,
		reportsHandler:   reportsHandler,
		leadHandler:      leadHandler,
		quoteHandler:     quoteHandler,
		siteHandler:      siteHandler,
		invoiceHandler:   invoiceHandler,
		settingHandler:   settingHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health probes
	r.Get("/health", rt.healthHandler.Live)
	r.Get("/health/db", rt.healthHandler.Database)

	// All API routes require a bearer token with a resolved organization
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.RequireAuth)
		r.Use(rt.authMiddleware.RequireOrganization)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/metrics", rt.dashboardHandler.GetMetrics)
			r.Get("/revenue", rt.dashboardHandler.GetRevenueTrend)
			r.Get("/activity", rt.dashboardHandler.GetActivityFeed)
		})

		r.Get("/reports", rt.reportsHandler.GetReport)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", rt.leadHandler.List)
			r.Post("/", rt.leadHandler.Create)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", rt.quoteHandler.List)
			r.Post("/", rt.quoteHandler.Create)
		})

		r.Get("/sites", rt.siteHandler.List)
		r.Get("/invoices", rt.invoiceHandler.List)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/project-statuses", rt.settingHandler.GetProjectStatuses)
			r.Put("/project-statuses", rt.settingHandler.UpdateProjectStatuses)
		})
	})

	return r
}
