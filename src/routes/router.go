package routes

import (
	"Backend-Evalhub/src/middleware"
	"Backend-Evalhub/src/services/aggregation"
	"Backend-Evalhub/src/services/assignments"
	"Backend-Evalhub/src/services/progress"
	"Backend-Evalhub/src/services/scoring"

	"github.com/gofiber/fiber/v2"
)

// InitRoutes wires every module's routes under /api/v1. The engine services
// are shared: the worker uses the same aggregation service, so rebuilds
// serialize with live submissions.
func InitRoutes(app *fiber.App, engine *scoring.Service, registry *assignments.Service, aggregates *aggregation.Service, broadcaster *progress.Broadcaster) {
	api := app.Group("/api/v1", middleware.AuthJWT)

	TemplateRoutes(api)
	AssignmentRoutes(api, registry)
	SubmissionRoutes(api, engine)
	ProgressRoutes(api, aggregates, broadcaster)
	ProjectRoutes(api)
	CompanyRoutes(api)
	EvaluatorRoutes(api)

	// Route เช็คว่า API ทำงานอยู่
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("✅ API is running...")
	})
}
