// internal/domain/models/equipmentbooking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses. Any status may be set from any other; there is no
// enforced transition order.
const (
	BookingPending  = "pending"
	BookingApproved = "approved"
	BookingRejected = "rejected"
)

// BookingStatuses lists every valid booking status.
var BookingStatuses = []string{BookingPending, BookingApproved, BookingRejected}

// IsValidBookingStatus reports whether s is one of BookingStatuses.
func IsValidBookingStatus(s string) bool {
	for _, v := range BookingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// BookingItem is one line of an equipment booking. ID refers to the
// client's equipment identifier and is not checked against the catalog.
type BookingItem struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// EquipmentBooking is a request to rent equipment for an event.
type EquipmentBooking struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName string             `bson:"full_name" json:"fullName"`
	Phone    string             `bson:"phone" json:"phone"`
	Location string             `bson:"location" json:"location"`
	Date     time.Time          `bson:"date" json:"date"`
	Items    []BookingItem      `bson:"items" json:"items"`
	Status   string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
