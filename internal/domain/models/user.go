// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered site account. Admins manage the back office; plain
// users can only read and edit their own profile.
//
// PasswordHash is never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // normalized lowercase, unique
	PasswordHash string             `bson:"password_hash" json:"-"`
	PhoneNumber  string             `bson:"phone_number" json:"phoneNumber"`
	Address      string             `bson:"address,omitempty" json:"address"`
	Role         string             `bson:"role" json:"role"` // user | admin

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
