package scoring

import (
	DB "Backend-Evalhub/src/database"
	"Backend-Evalhub/src/models"
	"Backend-Evalhub/src/services/assignments"
	"Backend-Evalhub/src/services/templates"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoService wires the engine to the shared collections and the given
// aggregator. This is the production construction; tests inject fakes via
// NewService.
func NewMongoService(registry *assignments.Service, aggregator Aggregator) *Service {
	return NewService(&mongoTemplates{}, &registryAdapter{registry: registry}, &mongoStore{}, aggregator)
}

type mongoTemplates struct{}

func (m *mongoTemplates) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	return templates.GetTemplateByID(ctx, id)
}

func (m *mongoTemplates) MarkLocked(ctx context.Context, id primitive.ObjectID) error {
	return templates.MarkLocked(ctx, id)
}

type registryAdapter struct {
	registry *assignments.Service
}

// Get translates the registry's not-found sentinel into the engine's
// (nil, nil) contract; any other error is a lookup failure and propagates.
func (r *registryAdapter) Get(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (*models.Assignment, error) {
	assignment, err := r.registry.Get(ctx, evaluatorID, companyID, projectID)
	if err != nil {
		if errors.Is(err, assignments.ErrAssignmentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return assignment, nil
}

type mongoStore struct{}

func tripleFilter(evaluatorID, companyID, projectID primitive.ObjectID) bson.M {
	return bson.M{
		"evaluatorId": evaluatorID,
		"companyId":   companyID,
		"projectId":   projectID,
	}
}

func (m *mongoStore) Find(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (*models.Submission, error) {
	var submission models.Submission
	err := DB.SubmissionCollection.FindOne(ctx, tripleFilter(evaluatorID, companyID, projectID)).Decode(&submission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &submission, nil
}

// Upsert writes the submission keyed by its triple, so repeated draft saves
// land on the same document.
func (m *mongoStore) Upsert(ctx context.Context, submission *models.Submission) error {
	submission.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"templateId":     submission.TemplateID,
			"status":         submission.Status,
			"itemScores":     submission.ItemScores,
			"overallComment": submission.OverallComment,
			"totalScore":     submission.TotalScore,
			"weightedTotal":  submission.WeightedTotal,
			"submittedAt":    submission.SubmittedAt,
			"updatedAt":      submission.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":         submission.ID,
			"evaluatorId": submission.EvaluatorID,
			"companyId":   submission.CompanyID,
			"projectId":   submission.ProjectID,
			"createdAt":   submission.CreatedAt,
		},
	}

	filter := tripleFilter(submission.EvaluatorID, submission.CompanyID, submission.ProjectID)
	res, err := DB.SubmissionCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		submission.ID = oid
	}
	return nil
}

// RevertToDraft undoes a submitted transition whose aggregation failed.
func (m *mongoStore) RevertToDraft(ctx context.Context, id primitive.ObjectID) error {
	_, err := DB.SubmissionCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"status": models.SubmissionDraft, "updatedAt": time.Now()},
			"$unset": bson.M{"totalScore": "", "weightedTotal": "", "submittedAt": ""},
		},
	)
	return err
}
