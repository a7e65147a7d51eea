// internal/domain/models/quote.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Quote is an event quote request submitted from the public site.
type Quote struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName    string             `bson:"full_name" json:"fullName"`
	Email       string             `bson:"email" json:"email"`
	PhoneNumber string             `bson:"phone_number" json:"phoneNumber"`
	EventType   string             `bson:"event_type" json:"eventType"`
	EventDate   time.Time          `bson:"event_date" json:"eventDate"`
	Guests      int                `bson:"guests" json:"guests"`
	Location    string             `bson:"location" json:"location"`
	Details     string             `bson:"details" json:"details"`
	Read        bool               `bson:"read" json:"read"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
