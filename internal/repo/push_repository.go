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
)

type pushSubscriptionRepository struct {
	subscriptions *db.Repository[model.PushSubscription]
}

type PushSubscriptionRepository interface {
	Save(ctx context.Context, sub *model.PushSubscription) error
	Get(ctx context.Context, userID string) (*model.PushSubscription, error)
	Remove(ctx context.Context, userID string) error
}

func NewPushSubscriptionRepository(subscriptions *db.Repository[model.PushSubscription]) PushSubscriptionRepository {
	return &pushSubscriptionRepository{subscriptions: subscriptions}
}

// Save upserts the subscription for the user; re-subscribing from a new
// browser simply replaces the endpoint.
func (r *pushSubscriptionRepository) Save(ctx context.Context, sub *model.PushSubscription) error {
	if sub == nil || sub.UserID == "" {
		return ErrInvalidUserID
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"endpoint":   sub.Endpoint,
		"keys":       sub.Keys,
		"created_at": time.Now().UTC(),
	}
	if _, err := r.subscriptions.Upsert(ctx, bson.M{"_id": sub.UserID}, set); err != nil {
		return fmt.Errorf("save push subscription failed: %w", err)
	}
	return nil
}

func (r *pushSubscriptionRepository) Get(ctx context.Context, userID string) (*model.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sub, err := r.subscriptions.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("push subscription lookup failed: %w", err)
	}
	return sub, nil
}

func (r *pushSubscriptionRepository) Remove(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.subscriptions.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("remove push subscription failed: %w", err)
	}
	return nil
}
