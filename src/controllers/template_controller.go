package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Backend-Evalhub/src/models"
	"Backend-Evalhub/src/services/templates"
)

var validate = validator.New()

// --------- Input DTOs ---------

type templateItemIn struct {
	ID       string  `json:"id" validate:"required"`
	Title    string  `json:"title" validate:"required"`
	MaxScore float64 `json:"maxScore"`
	Weight   float64 `json:"weight"`
	Bonus    bool    `json:"bonus"`
}

type createTemplateIn struct {
	ProjectID string           `json:"projectId" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	Items     []templateItemIn `json:"items" validate:"required,min=1,dive"`
}

func toModelItems(in []templateItemIn) []models.TemplateItem {
	items := make([]models.TemplateItem, 0, len(in))
	for _, item := range in {
		items = append(items, models.TemplateItem{
			ID:       item.ID,
			Title:    item.Title,
			MaxScore: item.MaxScore,
			Weight:   item.Weight,
			Bonus:    item.Bonus,
		})
	}
	return items
}

func templateErrorStatus(err error) int {
	switch {
	case errors.Is(err, templates.ErrTemplateNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, templates.ErrInvalidTemplate):
		return fiber.StatusBadRequest
	case errors.Is(err, templates.ErrTemplateLocked):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// CreateTemplate godoc
// @Summary      Create a scoring template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        template body createTemplateIn true "Template"
// @Success      201 {object} models.Template
// @Failure      400 {object} models.ErrorResponse
// @Router       /templates [post]
func CreateTemplate(c *fiber.Ctx) error {
	var in createTemplateIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input: " + err.Error()})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	projectOID, err := primitive.ObjectIDFromHex(in.ProjectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}

	template := models.Template{
		ProjectID: projectOID,
		Name:      in.Name,
		Active:    true,
		Items:     toModelItems(in.Items),
	}

	if err := templates.CreateTemplate(c.Context(), &template); err != nil {
		return c.Status(templateErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

// GetTemplate godoc
// @Summary      Get a template by id
// @Tags         templates
// @Produce      json
// @Param        id path string true "Template ID"
// @Success      200 {object} models.Template
// @Failure      404 {object} models.ErrorResponse
// @Router       /templates/{id} [get]
func GetTemplate(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	template, err := templates.GetTemplateByID(c.Context(), id)
	if err != nil {
		return c.Status(templateErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(template)
}

// GetTemplatesByProject - ดึงเทมเพลตทั้งหมดของโปรเจกต์
func GetTemplatesByProject(c *fiber.Ctx) error {
	projectID, err := primitive.ObjectIDFromHex(c.Params("projectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid projectId"})
	}

	result, err := templates.GetTemplatesByProject(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

type updateTemplateItemsIn struct {
	Items []templateItemIn `json:"items" validate:"required,min=1,dive"`
}

// UpdateTemplateItems replaces the items of an unlocked template.
func UpdateTemplateItems(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	var in updateTemplateItemsIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input: " + err.Error()})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := templates.UpdateTemplateItems(c.Context(), id, toModelItems(in.Items)); err != nil {
		return c.Status(templateErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Template updated successfully"})
}

// DeleteTemplate - ลบเทมเพลตที่ยังไม่ถูกล็อก
func DeleteTemplate(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	if err := templates.DeleteTemplate(c.Context(), id); err != nil {
		return c.Status(templateErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Template deleted successfully"})
}
