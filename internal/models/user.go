package models

import "time"

// User represents one identity known to the system. The row is created lazily
// on the first subscription write for a given external identity and is never
// deleted. ID, CreatedAt and UpdatedAt are assigned by the store.
type User struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	ExternalID string    `bson:"externalId" json:"externalIdentityId"` // subject claim, unique
	Username   string    `bson:"username" json:"username"`
	Email      string    `bson:"email" json:"email"`
	Subscribed bool      `bson:"subscribed" json:"subscribed"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
