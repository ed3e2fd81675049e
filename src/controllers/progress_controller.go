package controllers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Backend-Evalhub/src/jobs"
	"Backend-Evalhub/src/services/aggregation"
	"Backend-Evalhub/src/services/progress"
)

type ProgressController struct {
	aggregates  *aggregation.Service
	broadcaster *progress.Broadcaster
}

func NewProgressController(aggregates *aggregation.Service, broadcaster *progress.Broadcaster) *ProgressController {
	return &ProgressController{aggregates: aggregates, broadcaster: broadcaster}
}

// GetProgress godoc
// @Summary      Get completion progress for a project
// @Tags         progress
// @Produce      json
// @Param        projectId path string true "Project ID"
// @Success      200 {object} models.ProjectProgress
// @Router       /progress/{projectId} [get]
func (ctrl *ProgressController) GetProgress(c *fiber.Ctx) error {
	projectID, err := primitive.ObjectIDFromHex(c.Params("projectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}

	snapshot, err := ctrl.aggregates.GetProjectProgress(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snapshot)
}

// GetCompanyAggregate - ดึงคะแนนรวมของบริษัท
func (ctrl *ProgressController) GetCompanyAggregate(c *fiber.Ctx) error {
	projectID, err := primitive.ObjectIDFromHex(c.Params("projectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}
	companyID, err := primitive.ObjectIDFromHex(c.Params("companyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid companyId"})
	}

	aggregate, err := ctrl.aggregates.GetCompanyAggregate(c.Context(), companyID, projectID)
	if err != nil {
		if errors.Is(err, aggregation.ErrAggregateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No aggregate for this company yet"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(aggregate)
}

// StreamProgress pushes progress snapshots over SSE until the client
// disconnects. The subscription is connection-scoped; a dropped connection
// tears it down on the next flush.
func (ctrl *ProgressController) StreamProgress(c *fiber.Ctx) error {
	projectID, err := primitive.ObjectIDFromHex(c.Params("projectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}

	// Current snapshot first so the dashboard renders before the next
	// submission lands.
	snapshot, err := ctrl.aggregates.GetProjectProgress(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	broadcaster := ctrl.broadcaster
	initial := *snapshot

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		sub := broadcaster.Subscribe(projectID)
		defer broadcaster.Unsubscribe(sub)

		if err := writeSSE(w, initial); err != nil {
			return
		}
		for update := range sub.C {
			if err := writeSSE(w, update); err != nil {
				return
			}
		}
	})
	return nil
}

func writeSSE(w *bufio.Writer, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// RebuildAggregates queues a full recompute of a project's aggregates.
func (ctrl *ProgressController) RebuildAggregates(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	if _, err := primitive.ObjectIDFromHex(projectID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}

	if err := jobs.EnqueueRebuildAggregates(projectID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	log.Println("[progress] rebuild queued for project:", projectID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Rebuild queued"})
}
