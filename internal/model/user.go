package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in MongoDB. Account management lives
// elsewhere; the messaging layer only reads these for existence checks.
type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Username   string             `json:"username" bson:"username"`
	Email      string             `json:"email" bson:"email"`
	ProfilePic string             `json:"profilePic" bson:"profilePic"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
