// handlers/debate_routes.go
package handlers

import (
	"debate-arena-system/middleware"
	"debate-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDebateRoutes(app *fiber.App, debateService *services.DebateService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/debates", debateService.GetAllDebates)
	app.Get("/debates/:id", debateService.GetDebateByID)
	app.Get("/debates/:id/statements", debateService.GetDebateStatements)

	// 🔐 Secured routes — require user context (userID, roles), enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/debates", debateService.CreateDebate)
	secured.Post("/debates/:id/join", debateService.JoinDebate)
	secured.Post("/debates/:id/statements", debateService.SubmitStatement)

	// Watching
	secured.Post("/debates/:id/watch", debateService.WatchDebate)
	secured.Delete("/debates/:id/watch", debateService.UnwatchDebate)

	// 🔒 Admin-only: group eliminations
	admin := secured.Group("/", middleware.RequireRole("admin"))
	admin.Patch("/debates/:id/participants/:user_id/eliminate", debateService.EliminateParticipant)
}
