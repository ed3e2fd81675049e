package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment สิทธิ์ของกรรมการในการประเมินบริษัท
// Unique per (evaluatorId, companyId, projectId).
type Assignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EvaluatorID primitive.ObjectID `bson:"evaluatorId" json:"evaluatorId"`
	CompanyID   primitive.ObjectID `bson:"companyId" json:"companyId"`
	ProjectID   primitive.ObjectID `bson:"projectId" json:"projectId"`
	TemplateID  primitive.ObjectID `bson:"templateId" json:"templateId"`
	Deadline    *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
}
