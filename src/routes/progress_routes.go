package routes

import (
	"Backend-Evalhub/src/controllers"
	"Backend-Evalhub/src/middleware"
	"Backend-Evalhub/src/services/aggregation"
	"Backend-Evalhub/src/services/progress"

	"github.com/gofiber/fiber/v2"
)

func ProgressRoutes(router fiber.Router, aggregates *aggregation.Service, broadcaster *progress.Broadcaster) {
	ctrl := controllers.NewProgressController(aggregates, broadcaster)

	router.Get("/progress/:projectId", ctrl.GetProgress)
	router.Get("/progress/:projectId/stream", ctrl.StreamProgress)
	router.Post("/progress/:projectId/rebuild", middleware.RequireRole("admin"), ctrl.RebuildAggregates)

	router.Get("/aggregates/:projectId/:companyId", ctrl.GetCompanyAggregate)
}
