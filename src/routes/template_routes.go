package routes

import (
	"Backend-Evalhub/src/controllers"
	"Backend-Evalhub/src/middleware"

	"github.com/gofiber/fiber/v2"
)

// TemplateRoutes กำหนดเส้นทางสำหรับ Template API
func TemplateRoutes(router fiber.Router) {
	adminOnly := middleware.RequireRole("admin", "secretary")

	templates := router.Group("/templates")
	templates.Post("/", adminOnly, controllers.CreateTemplate)
	templates.Get("/:id", controllers.GetTemplate)
	templates.Put("/:id/items", adminOnly, controllers.UpdateTemplateItems)
	templates.Delete("/:id", adminOnly, controllers.DeleteTemplate)

	router.Get("/projects/:projectId/templates", controllers.GetTemplatesByProject)
}
