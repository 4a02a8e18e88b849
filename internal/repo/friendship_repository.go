package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/db"
	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var ErrRequestNotFound = errors.New("friend request not found")

type friendshipRepository struct {
	friendships *db.Repository[model.Friendship]
	logger      *zap.Logger
}

type FriendshipRepository interface {
	Request(ctx context.Context, senderID, receiverID string) (*model.Friendship, error)
	Status(ctx context.Context, userA, userB string) (*model.Friendship, error)
	Accept(ctx context.Context, requestID string) (*model.Friendship, error)
	Reject(ctx context.Context, requestID string) (*model.Friendship, error)
	Pending(ctx context.Context, receiverID string) ([]model.Friendship, error)
	Contacts(ctx context.Context, userID string) ([]model.Friendship, error)
}

func NewFriendshipRepository(friendships *db.Repository[model.Friendship], logger *zap.Logger) FriendshipRepository {
	return &friendshipRepository{
		friendships: friendships,
		logger:      logger,
	}
}

// Request creates a pending friend request. If a request already exists
// in either direction it is returned as-is instead of erroring.
func (r *friendshipRepository) Request(ctx context.Context, senderID, receiverID string) (*model.Friendship, error) {
	if senderID == "" || receiverID == "" {
		return nil, ErrInvalidUserID
	}

	ctx, cancel := r.ensureTimeout(ctx)
	defer cancel()

	existing, err := r.Status(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		r.logger.Debug("friend request already exists",
			zap.String("id", existing.ID),
			zap.String("status", existing.Status),
		)
		return existing, nil
	}

	request := model.Friendship{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.FriendshipPending,
		CreatedAt:  time.Now().UTC(),
	}

	if err := r.friendships.Create(ctx, request); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.Status(ctx, senderID, receiverID)
		}
		return nil, fmt.Errorf("create friend request failed: %w", err)
	}

	r.logger.Info("friend request created",
		zap.String("sender_id", senderID),
		zap.String("receiver_id", receiverID),
	)
	return &request, nil
}

// Status returns the friendship between the pair in either direction, or
// nil when none exists.
func (r *friendshipRepository) Status(ctx context.Context, userA, userB string) (*model.Friendship, error) {
	ctx, cancel := r.ensureTimeout(ctx)
	defer cancel()

	friendship, err := r.friendships.FindOne(ctx, db.Pair("sender_id", "receiver_id", userA, userB))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("friendship lookup failed: %w", err)
	}
	return friendship, nil
}

// Accept marks the request accepted. Accepting an already accepted
// request is a no-op returning the current row.
func (r *friendshipRepository) Accept(ctx context.Context, requestID string) (*model.Friendship, error) {
	return r.setStatus(ctx, requestID, model.FriendshipAccepted)
}

// Reject marks the request rejected, idempotently.
func (r *friendshipRepository) Reject(ctx context.Context, requestID string) (*model.Friendship, error) {
	return r.setStatus(ctx, requestID, model.FriendshipRejected)
}

func (r *friendshipRepository) setStatus(ctx context.Context, requestID, status string) (*model.Friendship, error) {
	ctx, cancel := r.ensureTimeout(ctx)
	defer cancel()

	current, err := r.friendships.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("friendship lookup failed: %w", err)
	}

	if current.Status == status {
		return current, nil
	}

	now := time.Now().UTC()
	set := bson.M{"status": status, "updated_at": now}
	if _, err := r.friendships.UpdateByID(ctx, requestID, set); err != nil {
		return nil, fmt.Errorf("update friendship failed: %w", err)
	}

	current.Status = status
	current.UpdatedAt = &now

	r.logger.Info("friendship updated",
		zap.String("id", requestID),
		zap.String("status", status),
	)
	return current, nil
}

func (r *friendshipRepository) Pending(ctx context.Context, receiverID string) ([]model.Friendship, error) {
	ctx, cancel := r.ensureTimeout(ctx)
	defer cancel()

	filter := db.NewFilter().
		Eq("receiver_id", receiverID).
		Eq("status", model.FriendshipPending).
		Build()

	return r.friendships.FindAll(ctx, filter)
}

func (r *friendshipRepository) Contacts(ctx context.Context, userID string) ([]model.Friendship, error) {
	ctx, cancel := r.ensureTimeout(ctx)
	defer cancel()

	filter := db.NewFilter().
		Eq("status", model.FriendshipAccepted).
		Or(bson.M{"sender_id": userID}, bson.M{"receiver_id": userID}).
		Build()

	return r.friendships.FindAll(ctx, filter)
}

func (r *friendshipRepository) ensureTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, defaultWriteTimeout)
}
