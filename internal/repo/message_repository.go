package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/db"
	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")
	ErrInvalidMessage     = errors.New("invalid message: message cannot be nil")
	ErrInvalidUserID      = errors.New("invalid user ID: cannot be empty")
	ErrOperationTimeout   = errors.New("operation timeout exceeded")
	ErrNotSender          = errors.New("only the sender can delete a message for everyone")
)

const (
	// Timeouts
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second

	// Retry configuration
	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

type messageRepository struct {
	messages  *db.Repository[model.Message]
	deletions *db.Repository[model.MessageDeletion]
	logger    *zap.Logger
}

type MessageRepository interface {
	Insert(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	GetConversation(ctx context.Context, userA, userB string) ([]model.Message, error)
	GetConversationPage(ctx context.Context, userA, userB string, page int64) (*db.PaginatedResult[model.Message], error)
	MarkSeen(ctx context.Context, messageIDs []string) error
	MarkDelivered(ctx context.Context, messageIDs []string) error
	UnseenFrom(ctx context.Context, viewerID, peerID string) ([]model.Message, error)
	UnreadCount(ctx context.Context, viewerID, peerID string) (int64, error)
	Tombstone(ctx context.Context, messageID, senderID string) error
	SetReaction(ctx context.Context, messageID, userID, emoji string) error
	DeleteForUser(ctx context.Context, messageID, userID string) error
	DeletedIDs(ctx context.Context, userID string) (map[string]bool, error)
	DeleteConversation(ctx context.Context, userA, userB string) error
	LatestPerPeer(ctx context.Context, userID string) ([]model.Message, error)
}

func NewMessageRepository(messages *db.Repository[model.Message], deletions *db.Repository[model.MessageDeletion], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		messages:  messages,
		deletions: deletions,
		logger:    logger,
	}
}

func pairFilter(userA, userB string) bson.M {
	return db.Pair("sender_id", "receiver_id", userA, userB)
}

func sortCreatedAtAsc() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
}

func sortCreatedAtDesc(limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
}

// -----------------------------------------------------------------------------
// Insert
// -----------------------------------------------------------------------------

func (m *messageRepository) Insert(ctx context.Context, msg *model.Message) error {
	if msg == nil {
		return ErrInvalidMessage
	}
	if msg.SenderID == "" || msg.ReceiverID == "" {
		return ErrInvalidUserID
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	err := m.withRetry(ctx, "insert message", func(ctx context.Context) error {
		err := m.messages.Create(ctx, *msg)
		if mongo.IsDuplicateKeyError(err) {
			// Already stored via the other channel; absorb silently.
			m.logger.Debug("duplicate message insert absorbed", zap.String("message_id", msg.ID))
			return nil
		}
		return err
	})
	if err != nil {
		m.logger.Error("failed to insert message",
			zap.Error(err),
			zap.String("message_id", msg.ID),
		)
		return fmt.Errorf("insert message failed: %w", err)
	}

	m.logger.Info("message inserted",
		zap.String("message_id", msg.ID),
		zap.String("sender_id", msg.SenderID),
		zap.String("receiver_id", msg.ReceiverID),
	)
	return nil
}

func (m *messageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()
	return m.messages.FindByID(ctx, id)
}

// -----------------------------------------------------------------------------
// Conversation reads
// -----------------------------------------------------------------------------

func (m *messageRepository) GetConversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	if userA == "" || userB == "" {
		return nil, ErrInvalidUserID
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	var result []model.Message
	err := m.withRetry(ctx, "get conversation", func(ctx context.Context) error {
		msgs, err := m.messages.FindAll(ctx, pairFilter(userA, userB), sortCreatedAtAsc())
		if err != nil {
			return err
		}
		result = msgs
		return nil
	})
	if err != nil {
		return nil, m.handleReadError(err, userA, userB)
	}

	m.logger.Debug("conversation retrieved",
		zap.String("pair", model.ConversationKey(userA, userB)),
		zap.Int("count", len(result)),
	)
	return result, nil
}

func (m *messageRepository) GetConversationPage(ctx context.Context, userA, userB string, page int64) (*db.PaginatedResult[model.Message], error) {
	if userA == "" || userB == "" {
		return nil, ErrInvalidUserID
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	var result *db.PaginatedResult[model.Message]
	err := m.withRetry(ctx, "get conversation page", func(ctx context.Context) error {
		page, err := m.messages.FindWithPagination(ctx, pairFilter(userA, userB), db.PaginationParams{
			Page:     page,
			PageSize: 15,
			SortBy:   "created_at",
			SortDesc: false,
		})
		if err != nil {
			return err
		}
		result = page
		return nil
	})
	if err != nil {
		return nil, m.handleReadError(err, userA, userB)
	}
	return result, nil
}

func (m *messageRepository) UnseenFrom(ctx context.Context, viewerID, peerID string) ([]model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("sender_id", peerID).
		Eq("receiver_id", viewerID).
		Ne("delivery_state", model.DeliveryStateSeen).
		Build()

	return m.messages.FindAll(ctx, filter, sortCreatedAtAsc())
}

func (m *messageRepository) UnreadCount(ctx context.Context, viewerID, peerID string) (int64, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("sender_id", peerID).
		Eq("receiver_id", viewerID).
		Ne("delivery_state", model.DeliveryStateSeen).
		Build()

	return m.messages.Count(ctx, filter)
}

// LatestPerPeer returns the newest message for every conversation the
// user participates in, newest conversation first.
func (m *messageRepository) LatestPerPeer(ctx context.Context, userID string) ([]model.Message, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Or(
		bson.M{"sender_id": userID},
		bson.M{"receiver_id": userID},
	).Build()

	msgs, err := m.messages.FindAll(ctx, filter, sortCreatedAtDesc(1000))
	if err != nil {
		return nil, fmt.Errorf("latest messages failed: %w", err)
	}

	latest := make([]model.Message, 0)
	seenPeers := make(map[string]bool)
	for _, msg := range msgs {
		peer := msg.PeerOf(userID)
		if seenPeers[peer] {
			continue
		}
		seenPeers[peer] = true
		latest = append(latest, msg)
	}
	return latest, nil
}

// -----------------------------------------------------------------------------
// Delivery state writes
// -----------------------------------------------------------------------------

// MarkSeen advances the listed messages to seen. $max keeps the
// transition monotonic regardless of the order updates land in.
func (m *messageRepository) MarkSeen(ctx context.Context, messageIDs []string) error {
	return m.advanceState(ctx, messageIDs, model.DeliveryStateSeen)
}

// MarkDelivered advances the listed messages to delivered without ever
// downgrading a seen message.
func (m *messageRepository) MarkDelivered(ctx context.Context, messageIDs []string) error {
	return m.advanceState(ctx, messageIDs, model.DeliveryStateDelivered)
}

func (m *messageRepository) advanceState(ctx context.Context, messageIDs []string, state int) error {
	if len(messageIDs) == 0 {
		return nil
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().In("_id", messageIDs).Build()
	update := bson.M{"$max": bson.M{"delivery_state": state}}

	if _, err := m.messages.ApplyMany(ctx, filter, update); err != nil {
		m.logger.Error("failed to advance delivery state",
			zap.Error(err),
			zap.Int("state", state),
			zap.Int("count", len(messageIDs)),
		)
		return fmt.Errorf("advance delivery state failed: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Deletion & reactions
// -----------------------------------------------------------------------------

// Tombstone marks a message deleted for everyone and replaces its
// content. Only the sender may do this; the flag never unsets.
func (m *messageRepository) Tombstone(ctx context.Context, messageID, senderID string) error {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("_id", messageID).Eq("sender_id", senderID).Build()
	set := bson.M{
		"deleted_for_everyone": true,
		"content":              model.TombstoneText,
	}

	result, err := m.messages.Update(ctx, filter, set)
	if err != nil {
		return fmt.Errorf("tombstone message failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotSender
	}

	m.logger.Info("message tombstoned", zap.String("message_id", messageID))
	return nil
}

// SetReaction stores one emoji per reacting user; a later reaction from
// the same user overwrites the earlier one.
func (m *messageRepository) SetReaction(ctx context.Context, messageID, userID, emoji string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	set := bson.M{"reactions." + userID: emoji}
	if _, err := m.messages.UpdateByID(ctx, messageID, set); err != nil {
		return fmt.Errorf("set reaction failed: %w", err)
	}
	return nil
}

// DeleteForUser records a self-scoped deletion. Re-deleting the same
// message is absorbed.
func (m *messageRepository) DeleteForUser(ctx context.Context, messageID, userID string) error {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("message_id", messageID).Eq("user_id", userID).Build()
	set := bson.M{
		"message_id": messageID,
		"user_id":    userID,
		"deleted_at": time.Now().UTC(),
	}

	if _, err := m.deletions.Upsert(ctx, filter, set); err != nil {
		return fmt.Errorf("delete for user failed: %w", err)
	}
	return nil
}

func (m *messageRepository) DeletedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	records, err := m.deletions.FindAll(ctx, db.NewFilter().Eq("user_id", userID).Build())
	if err != nil {
		return nil, fmt.Errorf("load deletions failed: %w", err)
	}

	ids := make(map[string]bool, len(records))
	for _, rec := range records {
		ids[rec.MessageID] = true
	}
	return ids, nil
}

// DeleteConversation removes every message between the pair along with
// any self-deletion records pointing at them.
func (m *messageRepository) DeleteConversation(ctx context.Context, userA, userB string) error {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	msgs, err := m.messages.FindAll(ctx, pairFilter(userA, userB))
	if err != nil {
		return fmt.Errorf("load conversation for delete failed: %w", err)
	}
	if len(msgs) == 0 {
		return nil
	}

	ids := make([]string, len(msgs))
	for i, msg := range msgs {
		ids[i] = msg.ID
	}

	if _, err := m.messages.DeleteMany(ctx, db.NewFilter().In("_id", ids).Build()); err != nil {
		return fmt.Errorf("delete conversation failed: %w", err)
	}
	if _, err := m.deletions.DeleteMany(ctx, db.NewFilter().In("message_id", ids).Build()); err != nil {
		return fmt.Errorf("cleanup deletions failed: %w", err)
	}

	m.logger.Info("conversation deleted",
		zap.String("pair", model.ConversationKey(userA, userB)),
		zap.Int("messages", len(ids)),
	)
	return nil
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

func (m *messageRepository) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return err
			}
			m.logger.Warn("retrying operation",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", maxRetries),
			)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !m.isRetryableError(err) {
			break
		}
	}
	return lastErr
}

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

func (m *messageRepository) handleReadError(err error, userA, userB string) error {
	pair := model.ConversationKey(userA, userB)

	if errors.Is(err, context.DeadlineExceeded) {
		m.logger.Error("read timeout", zap.String("pair", pair))
		return ErrOperationTimeout
	}

	if errors.Is(err, context.Canceled) {
		m.logger.Debug("read cancelled", zap.String("pair", pair))
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}

	m.logger.Error("read failed", zap.Error(err), zap.String("pair", pair))
	return fmt.Errorf("get conversation failed: %w", err)
}
