// file: src/routes/assignment_routes.go
package routes

import (
	"Backend-Evalhub/src/controllers"
	"Backend-Evalhub/src/middleware"
	"Backend-Evalhub/src/services/assignments"

	"github.com/gofiber/fiber/v2"
)

func AssignmentRoutes(router fiber.Router, registry *assignments.Service) {
	ctrl := controllers.NewAssignmentController(registry)
	adminOnly := middleware.RequireRole("admin", "secretary")

	group := router.Group("/assignments")

	group.Post("/", adminOnly, ctrl.Assign)   // bulk assign, idempotent
	group.Delete("/", adminOnly, ctrl.Revoke) // refuses once a submission exists
	group.Get("/me", ctrl.ListMine)
}
