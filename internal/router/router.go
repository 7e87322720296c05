// Package router assembles the viewer's fiber app.
package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/handlers"
	"github.com/soltixdb/trendcast/internal/logging"
	"github.com/soltixdb/trendcast/internal/middleware"
	"github.com/soltixdb/trendcast/internal/modelstore"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, cache *modelstore.Cache, cfg *config.Config) *handlers.Handler {
	h := handlers.New(logger, cache, cfg)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))
	app.Use(middleware.ReadOnly())

	// Health check (no auth required)
	app.Get("/health", h.Health)

	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Viewer.APIKeys, cfg.Viewer.AuthEnabled))
	v1.Get("/model", h.Model)
	v1.Get("/predict", h.Predict)
	v1.Get("/forecast", h.Forecast)
	v1.Get("/plot", h.Plot)
	v1.Get("/cache", h.CacheStats)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, cache *modelstore.Cache, cfg *config.Config) (*fiber.App, *handlers.Handler) {
	app := fiber.New(fiber.Config{
		AppName:               "Trendcast Viewer",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	h := Setup(app, logger, cache, cfg)

	return app, h
}
