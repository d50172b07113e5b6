// handlers/sweep_routes.go
package handlers

import (
	"time"

	"debate-arena-system/middleware"
	"debate-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupSweepRoutes exposes the sweep entry point for an external scheduler
// (cron hitting it over HTTP). Same Sweep as the in-process gocron job — the
// sweep is idempotent, so double-triggering is harmless.
func SetupSweepRoutes(app *fiber.App, sweeper *services.SweeperService) {
	internal := app.Group("/internal", middleware.SweepSecretMiddleware())

	internal.Post("/sweep", func(c *fiber.Ctx) error {
		report := sweeper.Sweep(time.Now())
		return c.JSON(report)
	})
}
