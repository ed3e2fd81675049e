package routes

import (
	"Backend-Evalhub/src/controllers"
	"Backend-Evalhub/src/middleware"

	"github.com/gofiber/fiber/v2"
)

// CompanyRoutes กำหนดเส้นทางสำหรับ Company API
func CompanyRoutes(router fiber.Router) {
	adminOnly := middleware.RequireRole("admin", "secretary")

	companies := router.Group("/companies")
	companies.Post("/", adminOnly, controllers.CreateCompany)
	companies.Get("/:id", controllers.GetCompanyByID)
	companies.Put("/:id", adminOnly, controllers.UpdateCompany)
	companies.Delete("/:id", adminOnly, controllers.DeleteCompany)

	router.Get("/projects/:projectId/companies", controllers.GetCompaniesByProject)
}
