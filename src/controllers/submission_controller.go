package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Backend-Evalhub/src/models"
	"Backend-Evalhub/src/services/scoring"
	"Backend-Evalhub/src/services/templates"
)

type SubmissionController struct {
	engine *scoring.Service
}

func NewSubmissionController(engine *scoring.Service) *SubmissionController {
	return &SubmissionController{engine: engine}
}

// --------- Input DTOs ---------

type itemScoreIn struct {
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

type submissionIn struct {
	CompanyID      string                 `json:"companyId" validate:"required"`
	ProjectID      string                 `json:"projectId" validate:"required"`
	ItemScores     map[string]itemScoreIn `json:"itemScores" validate:"required"`
	OverallComment string                 `json:"overallComment,omitempty"`
}

// parseInput builds a scoring.Input. The evaluator identity always comes
// from the JWT locals set by the auth middleware.
func (ctrl *SubmissionController) parseInput(c *fiber.Ctx) (scoring.Input, error) {
	var in submissionIn
	if err := c.BodyParser(&in); err != nil {
		return scoring.Input{}, errors.New("Invalid input: " + err.Error())
	}
	if err := validate.Struct(in); err != nil {
		return scoring.Input{}, err
	}

	userID, _ := c.Locals("userId").(string)
	evaluatorOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return scoring.Input{}, errors.New("invalid user identity")
	}
	companyOID, err := primitive.ObjectIDFromHex(in.CompanyID)
	if err != nil {
		return scoring.Input{}, errors.New("invalid companyId")
	}
	projectOID, err := primitive.ObjectIDFromHex(in.ProjectID)
	if err != nil {
		return scoring.Input{}, errors.New("invalid projectId")
	}

	scores := make(map[string]models.ItemScore, len(in.ItemScores))
	for itemID, entry := range in.ItemScores {
		scores[itemID] = models.ItemScore{Score: entry.Score, Comment: entry.Comment}
	}

	return scoring.Input{
		EvaluatorID:    evaluatorOID,
		CompanyID:      companyOID,
		ProjectID:      projectOID,
		ItemScores:     scores,
		OverallComment: in.OverallComment,
	}, nil
}

func scoringErrorStatus(err error) int {
	switch {
	case errors.Is(err, scoring.ErrNotAssigned):
		return fiber.StatusForbidden
	case errors.Is(err, scoring.ErrInvalidScore):
		return fiber.StatusBadRequest
	case errors.Is(err, scoring.ErrAlreadySubmitted):
		return fiber.StatusConflict
	case errors.Is(err, scoring.ErrSubmissionNotFound), errors.Is(err, templates.ErrTemplateNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// SaveDraft godoc
// @Summary      Save or overwrite a draft submission
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        submission body submissionIn true "Draft scores"
// @Success      200 {object} models.Submission
// @Failure      403 {object} models.ErrorResponse
// @Router       /submissions/draft [post]
func (ctrl *SubmissionController) SaveDraft(c *fiber.Ctx) error {
	input, err := ctrl.parseInput(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	submission, err := ctrl.engine.SaveDraft(c.Context(), input)
	if err != nil {
		return c.Status(scoringErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(submission)
}

// Submit godoc
// @Summary      Finalize a submission (one-shot, draft -> submitted)
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        submission body submissionIn true "Final scores"
// @Success      201 {object} models.Submission
// @Failure      409 {object} models.ErrorResponse
// @Router       /submissions/submit [post]
func (ctrl *SubmissionController) Submit(c *fiber.Ctx) error {
	input, err := ctrl.parseInput(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	submission, err := ctrl.engine.Submit(c.Context(), input)
	if err != nil {
		return c.Status(scoringErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("[submission] submitted company=%s project=%s", input.CompanyID.Hex(), input.ProjectID.Hex())
	return c.Status(fiber.StatusCreated).JSON(submission)
}

// GetMine reads back the caller's submission for a company/project pair.
// ใช้กับ: GET /submissions/me?companyId=...&projectId=...
func (ctrl *SubmissionController) GetMine(c *fiber.Ctx) error {
	userID, _ := c.Locals("userId").(string)
	evaluatorOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user identity"})
	}
	companyOID, err := primitive.ObjectIDFromHex(c.Query("companyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid companyId"})
	}
	projectOID, err := primitive.ObjectIDFromHex(c.Query("projectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}

	submission, err := ctrl.engine.GetForEvaluator(c.Context(), evaluatorOID, companyOID, projectOID)
	if err != nil {
		return c.Status(scoringErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(submission)
}
