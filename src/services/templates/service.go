package templates

import (
	DB "Backend-Evalhub/src/database"
	"Backend-Evalhub/src/models"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidTemplate  = errors.New("invalid template")
	ErrTemplateLocked   = errors.New("template is locked by existing submissions")
)

// ValidateItems checks the structural invariants of a template's items:
// at least one item, ids unique, every maxScore positive, every non-bonus
// weight positive, and a positive weight sum over non-bonus items.
func ValidateItems(items []models.TemplateItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: template has no items", ErrInvalidTemplate)
	}

	seen := make(map[string]bool, len(items))
	weightSum := 0.0
	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("%w: item with empty id", ErrInvalidTemplate)
		}
		if seen[item.ID] {
			return fmt.Errorf("%w: duplicate item id %q", ErrInvalidTemplate, item.ID)
		}
		seen[item.ID] = true

		if item.Bonus {
			// A bonus item's maxScore is its cap; 0 means uncapped.
			if item.MaxScore < 0 {
				return fmt.Errorf("%w: item %q maxScore must be >= 0", ErrInvalidTemplate, item.ID)
			}
			continue
		}
		if item.MaxScore <= 0 {
			return fmt.Errorf("%w: item %q maxScore must be > 0", ErrInvalidTemplate, item.ID)
		}
		if item.Weight <= 0 {
			return fmt.Errorf("%w: item %q weight must be > 0", ErrInvalidTemplate, item.ID)
		}
		weightSum += item.Weight
	}

	if weightSum <= 0 {
		return fmt.Errorf("%w: template has no scorable (non-bonus) items", ErrInvalidTemplate)
	}
	return nil
}

// CreateTemplate validates and inserts a new template. Validation runs
// entirely before the insert; an invalid template never reaches the store.
func CreateTemplate(ctx context.Context, template *models.Template) error {
	if template.ProjectID.IsZero() {
		return fmt.Errorf("%w: project ID is required", ErrInvalidTemplate)
	}
	if template.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}
	if err := ValidateItems(template.Items); err != nil {
		return err
	}

	template.ID = primitive.NewObjectID()
	template.Locked = false
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt

	_, err := DB.TemplateCollection.InsertOne(ctx, template)
	return err
}

// GetTemplateByID retrieves a template by its ID
func GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	var template models.Template
	err := DB.TemplateCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetTemplatesByProject lists templates for a project, newest first.
func GetTemplatesByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Template, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := DB.TemplateCollection.Find(ctx, bson.M{"projectId": projectID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []models.Template
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkLocked flips the locked flag. Called by the scoring engine the first
// time a submission references the template; idempotent.
func MarkLocked(ctx context.Context, id primitive.ObjectID) error {
	res, err := DB.TemplateCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"locked": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// UpdateTemplateItems replaces the item set of an unlocked template.
// Once any submission references the template this fails; create a new
// template for a new version instead.
func UpdateTemplateItems(ctx context.Context, id primitive.ObjectID, items []models.TemplateItem) error {
	if err := ValidateItems(items); err != nil {
		return err
	}

	template, err := GetTemplateByID(ctx, id)
	if err != nil {
		return err
	}
	if template.Locked {
		return ErrTemplateLocked
	}

	_, err = DB.TemplateCollection.UpdateOne(ctx,
		bson.M{"_id": id, "locked": false},
		bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now()}},
	)
	return err
}

// DeleteTemplate removes an unlocked template.
func DeleteTemplate(ctx context.Context, id primitive.ObjectID) error {
	template, err := GetTemplateByID(ctx, id)
	if err != nil {
		return err
	}
	if template.Locked {
		return ErrTemplateLocked
	}

	result, err := DB.TemplateCollection.DeleteOne(ctx, bson.M{"_id": id, "locked": false})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrTemplateLocked
	}
	return nil
}
