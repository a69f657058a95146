package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AmanShaikh33/HUDDLENEW/internal/db"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
)

const (
	// Timeouts - every store call is bounded so a stalled connection
	// handler cannot hold its resources indefinitely.
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 10 * time.Second

	// Retry configuration for transient Mongo errors
	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

// MessageRepository is the durable message store: insert, bidirectional
// history, bulk seen update and unread aggregation.
type MessageRepository interface {
	Insert(ctx context.Context, msg *model.Message) (*model.Message, error)
	History(ctx context.Context, userA, userB string) ([]model.Message, error)
	MarkSeen(ctx context.Context, sender, receiver string) (int64, error)
	UnreadCounts(ctx context.Context, receiver string) ([]model.UnreadCount, error)
}

type messageRepository struct {
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

func NewMessageRepository(repo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

// -----------------------------------------------------------------------------
// Insert
// -----------------------------------------------------------------------------

// Insert persists a new message, assigning id, creation time and the
// initial unseen status. The caller broadcasts only after this returns.
func (m *messageRepository) Insert(ctx context.Context, msg *model.Message) (*model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	msg.ID = primitive.NilObjectID
	msg.CreatedAt = time.Now().UTC()
	msg.Seen = false

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return nil, fmt.Errorf("%w: %v", model.ErrStore, err)
			}
			m.logger.Warn("retrying message insert",
				zap.Error(lastErr),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", maxRetries),
			)
		}

		result, err := m.mongoRepo.Create(ctx, *msg)
		if err == nil {
			if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
				msg.ID = oid
			}

			m.logger.Info("message inserted",
				zap.String("id", msg.ID.Hex()),
				zap.String("sender", msg.Sender),
				zap.String("receiver", msg.Receiver),
			)
			return msg, nil
		}

		lastErr = err
		if !m.isRetryableError(err) {
			break
		}
	}

	m.logger.Error("failed to insert message",
		zap.Error(lastErr),
		zap.String("sender", msg.Sender),
		zap.String("receiver", msg.Receiver),
	)
	return nil, fmt.Errorf("%w: insert message: %v", model.ErrStore, lastErr)
}

// -----------------------------------------------------------------------------
// History
// -----------------------------------------------------------------------------

// History returns every message exchanged between the two users, oldest
// first.
func (m *messageRepository) History(ctx context.Context, userA, userB string) ([]model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Or(
		db.NewFilter().Eq("sender", userA).Eq("receiver", userB).Build(),
		db.NewFilter().Eq("sender", userB).Eq("receiver", userA).Build(),
	).Build()

	messages, err := m.mongoRepo.FindAllSorted(ctx, filter, "created_at", false)
	if err != nil {
		m.logger.Error("failed to query history",
			zap.Error(err),
			zap.String("user_a", userA),
			zap.String("user_b", userB),
		)
		return nil, fmt.Errorf("%w: history: %v", model.ErrStore, err)
	}

	m.logger.Debug("history retrieved",
		zap.String("user_a", userA),
		zap.String("user_b", userB),
		zap.Int("count", len(messages)),
	)
	return messages, nil
}

// -----------------------------------------------------------------------------
// MarkSeen
// -----------------------------------------------------------------------------

// MarkSeen flips every unseen message from sender to receiver to seen and
// returns the number of modified documents. Idempotent: a second call
// matches zero rows and is a no-op.
func (m *messageRepository) MarkSeen(ctx context.Context, sender, receiver string) (int64, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("sender", sender).
		Eq("receiver", receiver).
		Eq("seen", false).
		Build()

	result, err := m.mongoRepo.UpdateMany(ctx, filter, bson.M{"seen": true})
	if err != nil {
		m.logger.Error("failed to mark messages seen",
			zap.Error(err),
			zap.String("sender", sender),
			zap.String("receiver", receiver),
		)
		return 0, fmt.Errorf("%w: mark seen: %v", model.ErrStore, err)
	}

	m.logger.Debug("messages marked seen",
		zap.String("sender", sender),
		zap.String("receiver", receiver),
		zap.Int64("modified", result.ModifiedCount),
	)
	return result.ModifiedCount, nil
}

// -----------------------------------------------------------------------------
// UnreadCounts
// -----------------------------------------------------------------------------

// UnreadCounts groups the receiver's unseen messages by sender.
func (m *messageRepository) UnreadCounts(ctx context.Context, receiver string) ([]model.UnreadCount, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"receiver": receiver, "seen": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$sender", "count": bson.M{"$sum": 1}}}},
	}

	var counts []model.UnreadCount
	if err := m.mongoRepo.Aggregate(ctx, pipeline, &counts); err != nil {
		m.logger.Error("failed to aggregate unread counts",
			zap.Error(err),
			zap.String("receiver", receiver),
		)
		return nil, fmt.Errorf("%w: unread counts: %v", model.ErrStore, err)
	}

	return counts, nil
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

func (m *messageRepository) ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (m *messageRepository) waitForRetry(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<uint(attempt)) * baseRetryDelay
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (m *messageRepository) isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
