package assignments

import (
	DB "Backend-Evalhub/src/database"
	"Backend-Evalhub/src/models"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoStore backs the registry with the shared assignments collection.
type mongoStore struct{}

func pairFilter(evaluatorID, companyID, projectID primitive.ObjectID) bson.M {
	return bson.M{
		"evaluatorId": evaluatorID,
		"companyId":   companyID,
		"projectId":   projectID,
	}
}

// UpsertPair inserts the assignment unless the (evaluator, company, project)
// pair already exists. $setOnInsert keeps existing rows untouched, which is
// what makes bulk assignment idempotent.
func (m *mongoStore) UpsertPair(ctx context.Context, assignment *models.Assignment) (bool, error) {
	assignment.ID = primitive.NewObjectID()

	filter := pairFilter(assignment.EvaluatorID, assignment.CompanyID, assignment.ProjectID)
	update := bson.M{"$setOnInsert": assignment}

	res, err := DB.AssignmentCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (m *mongoStore) Find(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := DB.AssignmentCollection.FindOne(ctx, pairFilter(evaluatorID, companyID, projectID)).Decode(&assignment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (m *mongoStore) Delete(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (bool, error) {
	res, err := DB.AssignmentCollection.DeleteOne(ctx, pairFilter(evaluatorID, companyID, projectID))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m *mongoStore) ListByEvaluator(ctx context.Context, evaluatorID primitive.ObjectID) ([]models.Assignment, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := DB.AssignmentCollection.Find(ctx, bson.M{"evaluatorId": evaluatorID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []models.Assignment
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *mongoStore) CountByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return DB.AssignmentCollection.CountDocuments(ctx, bson.M{"projectId": projectID})
}

// mongoSubmissionChecker answers the revoke guard from the submissions
// collection.
type mongoSubmissionChecker struct{}

func (m *mongoSubmissionChecker) Exists(ctx context.Context, evaluatorID, companyID, projectID primitive.ObjectID) (bool, error) {
	count, err := DB.SubmissionCollection.CountDocuments(ctx, pairFilter(evaluatorID, companyID, projectID), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
