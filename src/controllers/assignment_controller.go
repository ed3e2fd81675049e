package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Backend-Evalhub/src/jobs"
	"Backend-Evalhub/src/services/assignments"
)

type AssignmentController struct {
	service *assignments.Service
}

func NewAssignmentController(service *assignments.Service) *AssignmentController {
	return &AssignmentController{service: service}
}

// --------- Input DTOs ---------

type assignIn struct {
	EvaluatorID string     `json:"evaluatorId" validate:"required"`
	ProjectID   string     `json:"projectId" validate:"required"`
	TemplateID  string     `json:"templateId" validate:"required"`
	CompanyIDs  []string   `json:"companyIds" validate:"required,min=1"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type revokeIn struct {
	EvaluatorID string `json:"evaluatorId" validate:"required"`
	CompanyID   string `json:"companyId" validate:"required"`
	ProjectID   string `json:"projectId" validate:"required"`
}

// Assign godoc
// @Summary      Bulk-assign an evaluator to companies
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        assignment body assignIn true "Assignment batch"
// @Success      201 {object} map[string]int
// @Failure      400 {object} models.ErrorResponse
// @Router       /assignments [post]
func (ctrl *AssignmentController) Assign(c *fiber.Ctx) error {
	var in assignIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input: " + err.Error()})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	evaluatorOID, err := primitive.ObjectIDFromHex(in.EvaluatorID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid evaluatorId"})
	}
	projectOID, err := primitive.ObjectIDFromHex(in.ProjectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}
	templateOID, err := primitive.ObjectIDFromHex(in.TemplateID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid templateId"})
	}

	companyOIDs := make([]primitive.ObjectID, 0, len(in.CompanyIDs))
	for _, raw := range in.CompanyIDs {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid companyId: " + raw})
		}
		companyOIDs = append(companyOIDs, oid)
	}

	created, err := ctrl.service.Assign(c.Context(), evaluatorOID, projectOID, templateOID, companyOIDs, in.Deadline)
	if err != nil {
		if errors.Is(err, assignments.ErrInvalidAssignment) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if in.Deadline != nil && created > 0 {
		jobs.ScheduleDeadlineReminder(in.EvaluatorID, in.ProjectID, *in.Deadline)
	}

	log.Printf("[assignments] IN evaluator=%s project=%s companies=%d created=%d",
		in.EvaluatorID, in.ProjectID, len(in.CompanyIDs), created)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": created})
}

// Revoke godoc
// @Summary      Revoke an assignment (only before any submission exists)
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        assignment body revokeIn true "Assignment triple"
// @Success      200 {object} map[string]string
// @Failure      409 {object} models.ErrorResponse
// @Router       /assignments [delete]
func (ctrl *AssignmentController) Revoke(c *fiber.Ctx) error {
	var in revokeIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input: " + err.Error()})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	evaluatorOID, err := primitive.ObjectIDFromHex(in.EvaluatorID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid evaluatorId"})
	}
	companyOID, err := primitive.ObjectIDFromHex(in.CompanyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid companyId"})
	}
	projectOID, err := primitive.ObjectIDFromHex(in.ProjectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}

	if err := ctrl.service.Revoke(c.Context(), evaluatorOID, companyOID, projectOID); err != nil {
		switch {
		case errors.Is(err, assignments.ErrAssignmentHasSubmission):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, assignments.ErrAssignmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "Assignment revoked successfully"})
}

// ListMine returns the calling evaluator's assignments from the JWT
// identity, never from a body parameter.
func (ctrl *AssignmentController) ListMine(c *fiber.Ctx) error {
	userID, _ := c.Locals("userId").(string)
	evaluatorOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user identity"})
	}

	result, err := ctrl.service.ListByEvaluator(c.Context(), evaluatorOID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
