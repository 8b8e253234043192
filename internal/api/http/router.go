package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/travel-community/internal/api/http/handlers"
	"github.com/spec-kit/travel-community/internal/auth"
	"github.com/spec-kit/travel-community/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Verification   *handlers.VerificationHandler
	Admin          *handlers.AdminHandler
	Webhooks       *handlers.WebhookHandler
	Community      *handlers.CommunityHandler
	AuthMiddleware *auth.AuthMiddleware
	SubmitLimiter  *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	app.Post("/webhooks/provider", cfg.Webhooks.Provider)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireUser())
	protected.Get("/me", cfg.Users.Me)

	submit := []fiber.Handler{cfg.Verification.Submit}
	if cfg.SubmitLimiter != nil {
		submit = append([]fiber.Handler{cfg.SubmitLimiter.Handle}, submit...)
	}
	protected.Post("/verification-requests", submit...)
	protected.Get("/verification-requests", cfg.Verification.List)
	protected.Get("/verification/status", cfg.Verification.Status)
	protected.Post("/verification/sessions", cfg.Verification.StartSession)
	protected.Get("/verification/sessions", cfg.Verification.ListSessions)

	protected.Get("/forums/:type/posts", cfg.Community.ListPosts)
	protected.Post("/forums/:type/posts", cfg.Community.CreatePost)
	protected.Get("/posts/:id", cfg.Community.GetPost)
	protected.Get("/posts/:id/comments", cfg.Community.ListPostComments)
	protected.Post("/posts/:id/comments", cfg.Community.AddPostComment)
	protected.Get("/stay-requests", cfg.Community.ListStayRequests)
	protected.Post("/stay-requests", cfg.Community.CreateStayRequest)
	protected.Get("/stay-requests/:id", cfg.Community.GetStayRequest)
	protected.Get("/stay-requests/:id/comments", cfg.Community.ListStayComments)
	protected.Post("/stay-requests/:id/comments", cfg.Community.AddStayComment)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Get("/verification-requests", cfg.Admin.ListRequests)
	admin.Post("/verification-requests/:id/approve", cfg.Admin.Approve)
	admin.Post("/verification-requests/:id/reject", cfg.Admin.Reject)
	admin.Post("/verification-requests/:id/link", cfg.Admin.IssueLink)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users/:id/block", cfg.Admin.Block)
	admin.Post("/users/:id/unblock", cfg.Admin.Unblock)
	admin.Post("/users/:id/verify", cfg.Admin.Verify)
}
