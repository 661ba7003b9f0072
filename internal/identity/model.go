package identity

import "time"

// User is the account document stored in the users collection. UserID is the
// opaque identifier clients present when registering on the relay; it is
// server-generated and immutable.
type User struct {
	UserID       string    `bson:"user_id" json:"userId"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}
