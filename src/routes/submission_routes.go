// file: src/routes/submission_routes.go
package routes

import (
	"Backend-Evalhub/src/controllers"
	"Backend-Evalhub/src/middleware"
	"Backend-Evalhub/src/services/scoring"

	"github.com/gofiber/fiber/v2"
)

func SubmissionRoutes(router fiber.Router, engine *scoring.Service) {
	ctrl := controllers.NewSubmissionController(engine)
	evaluatorOnly := middleware.RequireRole("evaluator")

	submissions := router.Group("/submissions")

	submissions.Post("/draft", evaluatorOnly, ctrl.SaveDraft) // upsert, last write wins
	submissions.Post("/submit", evaluatorOnly, ctrl.Submit)   // one-shot transition
	submissions.Get("/me", evaluatorOnly, ctrl.GetMine)
}
