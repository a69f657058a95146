package event

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
)

// Client -> server events.
const (
	EventJoinChat    = "joinChat"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventMessageSeen = "messageSeen"
)

// Server -> client events.
const (
	EventUserOnline             = "userOnline"
	EventUserOffline            = "userOffline"
	EventReceiveMessage         = "receiveMessage"
	EventNewMessageNotification = "newMessageNotification"
	EventSeenUpdate             = "seenUpdate"
	EventError                  = "error"
)

// Envelope carries one named event over the socket in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinChat opens the conversation with another user and marks that user's
// earlier messages as seen.
type JoinChat struct {
	OtherUserID string `json:"otherUserId" validate:"required"`
}

// SendMessage runs the delivery pipeline. The sender is always taken from
// the authenticated connection, never from the payload.
type SendMessage struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

// Typing is the payload for both typing and stopTyping.
type Typing struct {
	ReceiverID string `json:"receiverId" validate:"required"`
}

// MessageSeen marks all unseen messages from the named sender as seen.
type MessageSeen struct {
	SenderID string `json:"senderId" validate:"required"`
}

// Notification is the lightweight server -> client push for a new message
// delivered outside the room broadcast.
type Notification struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

var validate = validator.New()

// Decode unmarshals and validates the envelope payload as T. Malformed or
// incomplete payloads are rejected here so handlers never see them.
func Decode[T any](env Envelope) (T, error) {
	var payload T
	if len(env.Data) == 0 {
		return payload, fmt.Errorf("%w: %s: empty payload", model.ErrValidation, env.Event)
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return payload, fmt.Errorf("%w: %s: %v", model.ErrValidation, env.Event, err)
	}
	if err := validate.Struct(payload); err != nil {
		return payload, fmt.Errorf("%w: %s: %v", model.ErrValidation, env.Event, err)
	}
	return payload, nil
}

// NewEnvelope marshals payload into an outbound envelope.
func NewEnvelope(name string, payload any) Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		// payloads are our own types; a marshal failure is a programming error
		panic(fmt.Sprintf("event: marshal %s payload: %v", name, err))
	}
	return Envelope{Event: name, Data: data}
}
