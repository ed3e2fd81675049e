package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompanyAggregate derived per-company statistics. Recomputed from the full
// set of submitted submissions on every finalize; never hand-edited.
type CompanyAggregate struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CompanyID            primitive.ObjectID `bson:"companyId" json:"companyId"`
	ProjectID            primitive.ObjectID `bson:"projectId" json:"projectId"`
	SubmissionCount      int64              `bson:"submissionCount" json:"submissionCount"`
	AverageTotalScore    float64            `bson:"averageTotalScore" json:"averageTotalScore"`
	AverageWeightedScore float64            `bson:"averageWeightedScore" json:"averageWeightedScore"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProjectProgress ความคืบหน้าการประเมินของโปรเจกต์
type ProjectProgress struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID      primitive.ObjectID `bson:"projectId" json:"projectId"`
	TotalExpected  int64              `bson:"totalExpected" json:"totalExpected"`
	CompletedCount int64              `bson:"completedCount" json:"completedCount"`
	Percentage     float64            `bson:"percentage" json:"percentage"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
