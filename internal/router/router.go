package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/static"

	"github.com/Fraol-12/WhisperBox/internal/handler"
	"github.com/Fraol-12/WhisperBox/internal/middleware"
	"github.com/Fraol-12/WhisperBox/internal/storage"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Complaint *handler.ComplaintHandler
	Admin     *handler.AdminHandler
	Health    *handler.HealthHandler
}

// Options carries the non-handler dependencies of the route table.
type Options struct {
	CORSOrigins string
	UploadDir   string // photos are served from here when set
	Authorizer  middleware.Authorizer
	Counter     middleware.Counter // shared rate limit counter; nil keeps counts in memory
	Metrics     bool
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, opts Options) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(requestid.New())
	app.Use(middleware.NewRequestLogger())
	if opts.Metrics {
		app.Use(handler.MetricsMiddleware())
	}
	app.Use(middleware.NewCORS(opts.CORSOrigins))

	// Probes and metrics sit outside /api
	if h.Health != nil {
		app.Get("/health/live", h.Health.Live)
		app.Get("/health/ready", h.Health.Ready)
	}
	if opts.Metrics {
		app.Get("/metrics", handler.MetricsHandler())
	}
	if opts.UploadDir != "" {
		app.Get(storage.PublicPrefix+"*", static.New(opts.UploadDir))
	}

	api := app.Group("/api")

	// Public complaint routes
	api.Post("/complaints", middleware.NewSubmitRateLimiter(opts.Counter).Handler(), h.Complaint.Create)
	api.Get("/complaints/:department", h.Complaint.ListByDepartment)
	api.Post("/complaints/:id/like", middleware.NewLikeRateLimiter(opts.Counter).Handler(), h.Complaint.Like)

	// Admin routes
	api.Post("/admin/login", middleware.NewLoginRateLimiter(opts.Counter).Handler(), h.Admin.Login)

	requireAdmin := middleware.RequireAdmin(opts.Authorizer)
	api.Get("/admin/complaints", requireAdmin, h.Admin.Complaints)
	api.Get("/admin/stats", requireAdmin, h.Admin.Stats)
	api.Put("/admin/complaints/:id/status", requireAdmin, h.Admin.UpdateStatus)
	api.Put("/admin/complaints/:id/reply", requireAdmin, h.Admin.Reply)
}
