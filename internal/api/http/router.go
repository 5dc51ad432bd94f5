package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/owaste/rewards-service/internal/api/http/handlers"
	"github.com/owaste/rewards-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Session        *handlers.SessionHandler
	Catalog        *handlers.CatalogHandler
	Scan           *handlers.ScanHandler
	Wallet         *handlers.WalletHandler
	History        *handlers.HistoryHandler
	Home           *handlers.HomeHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Get("/catalog/rewards", cfg.Catalog.Rewards)
	app.Get("/catalog/waste-types", cfg.Catalog.WasteTypes)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	member := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireUser()}
	withMember := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, member...), h)
	}

	authGroup.Post("/logout", withMember(cfg.Users.Logout)...)
	app.Get("/me", withMember(cfg.Users.Me)...)
	app.Get("/home", withMember(cfg.Home.Dashboard)...)
	app.Post("/home/notifications/read", withMember(cfg.Home.MarkRead)...)

	session := app.Group("/session", member...)
	session.Get("/view", cfg.Session.View)
	session.Post("/navigate", cfg.Session.Navigate)

	scan := app.Group("/scan", member...)
	scan.Get("", cfg.Scan.Status)
	scan.Post("/camera", cfg.Scan.Camera)
	scan.Post("/capture", cfg.Scan.Capture)
	scan.Post("/stop", cfg.Scan.Stop)
	scan.Post("/close", cfg.Scan.Close)

	wallet := app.Group("/wallet", member...)
	wallet.Get("", cfg.Wallet.Summary)
	wallet.Post("/convert", cfg.Wallet.Convert)
	wallet.Post("/rewards/:id/redeem", cfg.Wallet.Redeem)

	history := app.Group("/history", member...)
	history.Get("", cfg.History.List)
	history.Get("/stats", cfg.History.Stats)
	history.Get("/export", cfg.History.Export)
}
