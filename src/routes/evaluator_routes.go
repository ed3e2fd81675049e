package routes

import (
	"Backend-Evalhub/src/controllers"
	"Backend-Evalhub/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func EvaluatorRoutes(router fiber.Router) {
	router.Get("/evaluators", middleware.RequireRole("admin", "secretary"), controllers.GetEvaluators)
}
