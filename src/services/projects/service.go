package projects

import (
	DB "Backend-Evalhub/src/database"
	"Backend-Evalhub/src/models"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectHasAssignments = errors.New("project still has assignments")
)

// CreateProject - เพิ่มโปรเจกต์ใหม่
func CreateProject(ctx context.Context, project *models.Project) error {
	if project.Name == "" {
		return errors.New("project name is required")
	}

	project.ID = primitive.NewObjectID()
	project.Active = true
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt

	_, err := DB.ProjectCollection.InsertOne(ctx, project)
	return err
}

// GetProjectByID - ดึงข้อมูลโปรเจกต์ตาม ID
func GetProjectByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := DB.ProjectCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetProjects - ดึงโปรเจกต์ทั้งหมดแบบแบ่งหน้า
func GetProjects(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse, error) {
	filter := bson.M{}
	if params.Search != "" {
		filter["name"] = bson.M{"$regex": params.Search, "$options": "i"}
	}

	total, err := DB.ProjectCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	sortOrder := params.GetSortOrder()
	sort := bson.D{}
	for field, dir := range sortOrder {
		sort = append(sort, bson.E{Key: field, Value: dir})
	}

	findOpts := options.Find().
		SetSkip(params.GetSkip()).
		SetLimit(int64(params.Limit)).
		SetSort(sort)

	cursor, err := DB.ProjectCollection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []models.Project
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}

	return models.NewPaginatedResponse(result, total, params), nil
}

// UpdateProject - อัปเดตข้อมูลโปรเจกต์
func UpdateProject(ctx context.Context, id primitive.ObjectID, project *models.Project) error {
	update := bson.M{"$set": bson.M{
		"name":        project.Name,
		"description": project.Description,
		"year":        project.Year,
		"active":      project.Active,
		"updatedAt":   time.Now(),
	}}

	res, err := DB.ProjectCollection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// DeleteProject removes a project, refusing while assignments still point
// at it.
func DeleteProject(ctx context.Context, id primitive.ObjectID) error {
	count, err := DB.AssignmentCollection.CountDocuments(ctx, bson.M{"projectId": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProjectHasAssignments
	}

	res, err := DB.ProjectCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrProjectNotFound
	}
	return nil
}
