package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold.
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// User represents a registered account. Email is unique and immutable after
// signup; the password field only ever holds the bcrypt hash and is never
// serialized to JSON.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Contact   int64              `bson:"contact" json:"contact"`
	Age       int                `bson:"age" json:"age"`
	Address   string             `bson:"address" json:"address"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserSummary is the public projection returned by identity endpoints.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  string             `json:"role"`
}

// Summary projects the user onto its public fields.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
