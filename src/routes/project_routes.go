package routes

import (
	"Backend-Evalhub/src/controllers"
	"Backend-Evalhub/src/middleware"

	"github.com/gofiber/fiber/v2"
)

// ProjectRoutes กำหนดเส้นทางสำหรับ Project API
func ProjectRoutes(router fiber.Router) {
	adminOnly := middleware.RequireRole("admin", "secretary")

	projects := router.Group("/projects")
	projects.Post("/", adminOnly, controllers.CreateProject)
	projects.Get("/", controllers.GetProjects)
	projects.Get("/:id", controllers.GetProjectByID)
	projects.Put("/:id", adminOnly, controllers.UpdateProject)
	projects.Delete("/:id", adminOnly, controllers.DeleteProject)
}
