package aggregation

import (
	DB "Backend-Evalhub/src/database"
	"Backend-Evalhub/src/models"
	"Backend-Evalhub/src/services/assignments"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoService wires the service to the shared collections.
func NewMongoService(registry *assignments.Service, publisher Publisher) *Service {
	return NewService(&mongoSubmissions{}, registry, &mongoStore{}, publisher)
}

type mongoSubmissions struct{}

func (m *mongoSubmissions) ListSubmitted(ctx context.Context, companyID, projectID primitive.ObjectID) ([]models.Submission, error) {
	filter := bson.M{
		"companyId": companyID,
		"projectId": projectID,
		"status":    models.SubmissionSubmitted,
	}
	cursor, err := DB.SubmissionCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []models.Submission
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *mongoSubmissions) CountSubmittedByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return DB.SubmissionCollection.CountDocuments(ctx, bson.M{
		"projectId": projectID,
		"status":    models.SubmissionSubmitted,
	})
}

func (m *mongoSubmissions) ListCompaniesWithSubmissions(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := DB.SubmissionCollection.Distinct(ctx, "companyId", bson.M{"projectId": projectID})
	if err != nil {
		return nil, err
	}

	companies := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			companies = append(companies, oid)
		}
	}
	return companies, nil
}

type mongoStore struct{}

func (m *mongoStore) UpsertCompanyAggregate(ctx context.Context, aggregate *models.CompanyAggregate) error {
	filter := bson.M{"companyId": aggregate.CompanyID, "projectId": aggregate.ProjectID}
	update := bson.M{
		"$set": bson.M{
			"submissionCount":      aggregate.SubmissionCount,
			"averageTotalScore":    aggregate.AverageTotalScore,
			"averageWeightedScore": aggregate.AverageWeightedScore,
			"updatedAt":            aggregate.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"companyId": aggregate.CompanyID,
			"projectId": aggregate.ProjectID,
		},
	}
	_, err := DB.CompanyAggregateCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (m *mongoStore) GetCompanyAggregate(ctx context.Context, companyID, projectID primitive.ObjectID) (*models.CompanyAggregate, error) {
	var aggregate models.CompanyAggregate
	err := DB.CompanyAggregateCollection.FindOne(ctx, bson.M{"companyId": companyID, "projectId": projectID}).Decode(&aggregate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAggregateNotFound
		}
		return nil, err
	}
	return &aggregate, nil
}

func (m *mongoStore) UpsertProjectProgress(ctx context.Context, progress *models.ProjectProgress) error {
	filter := bson.M{"projectId": progress.ProjectID}
	update := bson.M{
		"$set": bson.M{
			"totalExpected":  progress.TotalExpected,
			"completedCount": progress.CompletedCount,
			"percentage":     progress.Percentage,
			"updatedAt":      progress.UpdatedAt,
		},
		"$setOnInsert": bson.M{"projectId": progress.ProjectID},
	}
	_, err := DB.ProjectProgressCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (m *mongoStore) GetProjectProgress(ctx context.Context, projectID primitive.ObjectID) (*models.ProjectProgress, error) {
	var progress models.ProjectProgress
	err := DB.ProjectProgressCollection.FindOne(ctx, bson.M{"projectId": projectID}).Decode(&progress)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAggregateNotFound
		}
		return nil, err
	}
	return &progress, nil
}
