package handlers

import (
	"time"

	"etalase/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppConfig configures NewApp.
type AppConfig struct {
	// RequestLog enables fiber's request logger.
	RequestLog bool
	// SecureCookie marks the session cookie Secure (HTTPS only).
	SecureCookie bool
}

// NewApp builds the inventory API: /auth, /api/inventory, /health and /metrics.
func NewApp(cfg AppConfig, authService *services.AuthService, productService *services.ProductService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "etalase inventory API",
		DisableStartupMessage: true,
	})

	if cfg.RequestLog {
		app.Use(fiberlogger.New())
	}

	NewAuthHandler(authService, cfg.SecureCookie).RegisterRoutes(app)
	NewInventoryHandler(productService, authService).RegisterRoutes(app.Group("/api"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}
