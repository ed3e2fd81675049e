package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company บริษัทที่เข้ารับการประเมินในโปรเจกต์
type Company struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID primitive.ObjectID `bson:"projectId" json:"projectId"`
	Name      string             `bson:"name" json:"name"`
	Booth     string             `bson:"booth,omitempty" json:"booth,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt"`
}
