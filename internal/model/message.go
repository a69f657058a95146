package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a private message between exactly two users. Immutable once
// persisted except for Seen, which only ever transitions false -> true.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Sender    string             `json:"sender" bson:"sender"`
	Receiver  string             `json:"receiver" bson:"receiver"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	Seen      bool               `json:"seen" bson:"seen"`
}

// UnreadCount is one row of the unread aggregation: how many unseen
// messages the given counterpart has sent to the querying user.
type UnreadCount struct {
	UserID string `json:"userId" bson:"_id"`
	Count  int64  `json:"count" bson:"count"`
}

// ErrorPayload represents an error response sent to a client over the
// WebSocket when the event has no other reply channel.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
