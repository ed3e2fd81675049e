package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission status values. The transition is one-way: draft -> submitted.
const (
	SubmissionDraft     = "draft"
	SubmissionSubmitted = "submitted"
)

// Submission ผลการประเมินของกรรมการหนึ่งคนต่อหนึ่งบริษัท
type Submission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EvaluatorID primitive.ObjectID `bson:"evaluatorId" json:"evaluatorId"`
	CompanyID   primitive.ObjectID `bson:"companyId" json:"companyId"`
	ProjectID   primitive.ObjectID `bson:"projectId" json:"projectId"`
	TemplateID  primitive.ObjectID `bson:"templateId" json:"templateId"`
	Status      string             `bson:"status" json:"status"`

	// ItemScores is keyed by the template item id. Keys must be a subset of
	// the referenced template's item ids.
	ItemScores     map[string]ItemScore `bson:"itemScores" json:"itemScores"`
	OverallComment string               `bson:"overallComment,omitempty" json:"overallComment,omitempty"`

	// Set only when Status == submitted.
	TotalScore    *float64   `bson:"totalScore,omitempty" json:"totalScore,omitempty"`
	WeightedTotal *float64   `bson:"weightedTotal,omitempty" json:"weightedTotal,omitempty"`
	SubmittedAt   *time.Time `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// ItemScore raw score for one criterion, with an optional comment.
type ItemScore struct {
	Score   float64 `bson:"score" json:"score"`
	Comment string  `bson:"comment,omitempty" json:"comment,omitempty"`
}
