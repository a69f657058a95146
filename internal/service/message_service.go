package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
	"github.com/AmanShaikh33/HUDDLENEW/internal/repo"
)

// Deliverer is the send path shared with the live channel: persist, then
// fan out to whoever is reachable.
type Deliverer interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error)
}

// SeenMarker applies the idempotent seen transition and notifies the
// original sender if online.
type SeenMarker interface {
	MarkSeen(ctx context.Context, readerID, counterpartID string) (int64, error)
}

// PresenceView exposes the online snapshot to the REST surface.
type PresenceView interface {
	Online() []string
}

// MessageService is the request/response backup surface over the same
// store and pipeline the live channel uses.
type MessageService interface {
	History(ctx context.Context, selfID, otherID string) ([]model.Message, error)
	Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error)
	MarkRead(ctx context.Context, selfID, otherID string) (int64, error)
	UnreadCounts(ctx context.Context, selfID string) (map[string]int64, error)
	Online() []string
}

type messageService struct {
	users    repo.UserRepository
	store    repo.MessageRepository
	delivery Deliverer
	relay    SeenMarker
	presence PresenceView
	logger   *zap.Logger
}

func NewMessageService(
	users repo.UserRepository,
	store repo.MessageRepository,
	delivery Deliverer,
	relay SeenMarker,
	presence PresenceView,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		users:    users,
		store:    store,
		delivery: delivery,
		relay:    relay,
		presence: presence,
		logger:   logger,
	}
}

// History returns the full conversation with otherID, oldest first.
func (s *messageService) History(ctx context.Context, selfID, otherID string) ([]model.Message, error) {
	if err := s.requireUser(ctx, otherID); err != nil {
		return nil, err
	}
	return s.store.History(ctx, selfID, otherID)
}

// Send runs the same delivery pipeline as the socket path, after
// confirming the receiver exists.
func (s *messageService) Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	if receiverID == "" || content == "" {
		return nil, fmt.Errorf("%w: receiver and content are required", model.ErrValidation)
	}
	if err := s.requireUser(ctx, receiverID); err != nil {
		return nil, err
	}
	return s.delivery.Send(ctx, senderID, receiverID, content)
}

// MarkRead marks every message from otherID to the caller as seen.
func (s *messageService) MarkRead(ctx context.Context, selfID, otherID string) (int64, error) {
	return s.relay.MarkSeen(ctx, selfID, otherID)
}

// UnreadCounts returns the caller's unseen-message counts keyed by
// counterpart. Reflects the store's current state exactly.
func (s *messageService) UnreadCounts(ctx context.Context, selfID string) (map[string]int64, error) {
	counts, err := s.store.UnreadCounts(ctx, selfID)
	if err != nil {
		return nil, err
	}

	return lo.Associate(counts, func(c model.UnreadCount) (string, int64) {
		return c.UserID, c.Count
	}), nil
}

// Online returns the ids of currently connected users.
func (s *messageService) Online() []string {
	return s.presence.Online()
}

func (s *messageService) requireUser(ctx context.Context, userID string) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: user %s", model.ErrNotFound, userID)
	}
	return nil
}
