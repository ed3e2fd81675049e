package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Evaluator read model populated by the identity system. The engine only
// reads it for listings; credentials live upstream.
type Evaluator struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role" json:"role"` // admin | secretary | evaluator
}
