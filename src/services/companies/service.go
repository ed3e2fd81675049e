package companies

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

var ErrCompanyNotFound = errors.New("company not found")

// CreateCompany - เพิ่มบริษัทเข้าโปรเจกต์
func CreateCompany(ctx context.Context, company *models.Company) error {
	if company.Name == "" {
		return errors.New("company name is required")
	}
	if company.ProjectID.IsZero() {
		return errors.New("project ID is required")
	}

	company.ID = primitive.NewObjectID()
	company.CreatedAt = time.Now()
	company.UpdatedAt = company.CreatedAt

	_, err := DB.CompanyCollection.InsertOne(ctx, company)
	return err
}

// GetCompanyByID - ดึงข้อมูลบริษัทตาม ID
func GetCompanyByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	var company models.Company
	err := DB.CompanyCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&company)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &company, nil
}

// GetCompaniesByProject - ดึงบริษัทในโปรเจกต์แบบแบ่งหน้า
func GetCompaniesByProject(ctx context.Context, projectID primitive.ObjectID, params models.PaginationParams) (*models.PaginatedResponse, error) {
	filter := bson.M{"projectId": projectID}
	if params.Search != "" {
		filter["name"] = bson.M{"$regex": params.Search, "$options": "i"}
	}

	total, err := DB.CompanyCollection.CountDocuments(ctx, filter)
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

	cursor, err := DB.CompanyCollection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []models.Company
	if err := cursor.All(ctx, &result); err != nil {
		return nil, err
	}

	return models.NewPaginatedResponse(result, total, params), nil
}

// UpdateCompany - อัปเดตข้อมูลบริษัท
func UpdateCompany(ctx context.Context, id primitive.ObjectID, company *models.Company) error {
	update := bson.M{"$set": bson.M{
		"name":      company.Name,
		"booth":     company.Booth,
		"updatedAt": time.Now(),
	}}

	res, err := DB.CompanyCollection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// DeleteCompany - ลบบริษัท
func DeleteCompany(ctx context.Context, id primitive.ObjectID) error {
	res, err := DB.CompanyCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCompanyNotFound
	}
	return nil
}
