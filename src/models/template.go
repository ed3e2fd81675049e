package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template เทมเพลตเกณฑ์การให้คะแนน
type Template struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID primitive.ObjectID `bson:"projectId" json:"projectId"`
	Name      string             `bson:"name" json:"name"`
	Active    bool               `bson:"active" json:"active"`
	// Locked is set the first time a submission references the template.
	// Items are immutable from then on; new versions get a new Template id.
	Locked    bool           `bson:"locked" json:"locked"`
	Items     []TemplateItem `bson:"items" json:"items"`
	CreatedAt time.Time      `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt,omitempty" json:"updatedAt"`
}

// TemplateItem a single weighted criterion. Bonus items carry flat extra
// points and are excluded from the weighted mean.
type TemplateItem struct {
	ID       string  `bson:"id" json:"id"`
	Title    string  `bson:"title" json:"title"`
	MaxScore float64 `bson:"maxScore" json:"maxScore"`
	Weight   float64 `bson:"weight" json:"weight"`
	Bonus    bool    `bson:"bonus" json:"bonus"`
}

// ItemByID returns the item with the given id, or nil.
func (t *Template) ItemByID(id string) *TemplateItem {
	for i := range t.Items {
		if t.Items[i].ID == id {
			return &t.Items[i]
		}
	}
	return nil
}
