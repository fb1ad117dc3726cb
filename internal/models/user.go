package models

import "time"

// User is an application user, upserted from token claims or seeded at
// startup (the admin account).
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserName  string    `bson:"UserName" json:"userName"`
	Email     string    `bson:"Email" json:"email"`
	FirstName string    `bson:"FirstName,omitempty" json:"firstName,omitempty"`
	LastName  string    `bson:"LastName,omitempty" json:"lastName,omitempty"`
	Roles     []string  `bson:"Roles,omitempty" json:"roles,omitempty"`
	CreatedAt time.Time `bson:"CreatedAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"UpdatedAt" json:"updatedAt"`
}
