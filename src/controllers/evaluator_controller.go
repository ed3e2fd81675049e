package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"

	DB "Backend-Evalhub/src/database"
	"Backend-Evalhub/src/models"
)

// GetEvaluators lists the evaluator directory (read model synced from the
// identity system).
func GetEvaluators(c *fiber.Ctx) error {
	cursor, err := DB.EvaluatorCollection.Find(c.Context(), bson.M{})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	defer cursor.Close(c.Context())

	var evaluators []models.Evaluator
	if err := cursor.All(c.Context(), &evaluators); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(evaluators)
}
