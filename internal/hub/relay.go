package hub

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AmanShaikh33/HUDDLENEW/internal/event"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
	"github.com/AmanShaikh33/HUDDLENEW/internal/repo"
)

// Relay handles the two ephemeral signal classes: typing indicators,
// which are forwarded verbatim or dropped, and the persisted seen
// transition with its notification back to the original sender.
type Relay struct {
	store    repo.MessageRepository
	presence *Presence
	logger   *zap.Logger
}

func NewRelay(store repo.MessageRepository, presence *Presence, logger *zap.Logger) *Relay {
	return &Relay{
		store:    store,
		presence: presence,
		logger:   logger,
	}
}

// Typing forwards a typing or stopTyping signal to the receiver's live
// session, carrying only the sender's id. If the receiver is offline the
// signal is dropped; no queuing, no error.
func (r *Relay) Typing(senderID, receiverID string, stop bool) {
	receiver, ok := r.presence.Lookup(receiverID)
	if !ok {
		return
	}

	name := event.EventTyping
	if stop {
		name = event.EventStopTyping
	}
	receiver.Send(event.NewEnvelope(name, senderID))
}

// MarkSeen flips every unseen message from counterpartID to readerID to
// seen, then tells the counterpart's live session that readerID has read
// their messages. Idempotent: re-invoking with nothing left to mark is a
// no-op, and the seenUpdate is still emitted so the sender's client can
// reconcile its ticks.
func (r *Relay) MarkSeen(ctx context.Context, readerID, counterpartID string) (int64, error) {
	if counterpartID == "" {
		return 0, fmt.Errorf("%w: counterpart is required", model.ErrValidation)
	}

	modified, err := r.store.MarkSeen(ctx, counterpartID, readerID)
	if err != nil {
		return 0, err
	}

	if sender, ok := r.presence.Lookup(counterpartID); ok {
		sender.Send(event.NewEnvelope(event.EventSeenUpdate, readerID))
	}

	if modified > 0 {
		r.logger.Debug("seen transition applied",
			zap.String("reader", readerID),
			zap.String("counterpart", counterpartID),
			zap.Int64("modified", modified),
		)
	}
	return modified, nil
}
