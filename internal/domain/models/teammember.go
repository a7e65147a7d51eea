// internal/domain/models/teammember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamMember is a person shown on the public team page.
// Photo is the public URL path of the uploaded image (e.g. /uploads/team/ab12-cd.jpg).
type TeamMember struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name    string             `bson:"name" json:"name"`
	Role    string             `bson:"role" json:"role"`
	Bio     string             `bson:"bio" json:"bio"`
	Photo   string             `bson:"photo" json:"photo"`
	Socials map[string]string  `bson:"socials,omitempty" json:"socials"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
