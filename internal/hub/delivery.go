package hub

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AmanShaikh33/HUDDLENEW/internal/event"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
	"github.com/AmanShaikh33/HUDDLENEW/internal/repo"
)

// Delivery runs the ordered send path for a single message: validate,
// persist, fan out to the room, then notify the receiver's direct session
// when the room broadcast did not already reach them. The persist step
// strictly precedes any broadcast, so a client querying history right
// after a live delivery always observes the message.
type Delivery struct {
	store    repo.MessageRepository
	presence *Presence
	rooms    *Rooms
	logger   *zap.Logger
}

func NewDelivery(store repo.MessageRepository, presence *Presence, rooms *Rooms, logger *zap.Logger) *Delivery {
	return &Delivery{
		store:    store,
		presence: presence,
		rooms:    rooms,
		logger:   logger,
	}
}

// Send delivers content from senderID to receiverID. On a store failure
// the whole operation fails and nothing is broadcast. A recipient with no
// live session is not an error; the message is durable and shows up in
// their next history fetch.
func (d *Delivery) Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	if receiverID == "" {
		return nil, fmt.Errorf("%w: receiver is required", model.ErrValidation)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", model.ErrValidation)
	}
	if receiverID == senderID {
		return nil, fmt.Errorf("%w: cannot message yourself", model.ErrValidation)
	}

	msg, err := d.store.Insert(ctx, &model.Message{
		Sender:   senderID,
		Receiver: receiverID,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}

	roomID := RoomID(senderID, receiverID)
	d.rooms.Broadcast(roomID, event.NewEnvelope(event.EventReceiveMessage, msg))

	// Direct push when the receiver is online but their session was not
	// part of the room broadcast. Never notify the sender of their own
	// message.
	if receiver, ok := d.presence.Lookup(receiverID); ok && !d.rooms.Contains(roomID, receiver) {
		receiver.Send(event.NewEnvelope(event.EventNewMessageNotification, event.Notification{
			Sender:  senderID,
			Content: msg.Content,
		}))
	}

	d.logger.Debug("message delivered",
		zap.String("id", msg.ID.Hex()),
		zap.String("room", roomID),
	)
	return msg, nil
}
