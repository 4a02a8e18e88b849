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

type profileRepository struct {
	profiles *db.Repository[model.Profile]
}

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Block(ctx context.Context, blockerID, blockedID string) error
	Unblock(ctx context.Context, blockerID, blockedID string) error
	IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error)
}

func NewProfileRepository(profiles *db.Repository[model.Profile]) ProfileRepository {
	return &profileRepository{profiles: profiles}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	profile, err := r.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}
	return profile, nil
}

// Block adds blockedID to the blocker's block list. $addToSet keeps the
// operation idempotent.
func (r *profileRepository) Block(ctx context.Context, blockerID, blockedID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$addToSet": bson.M{"blocked_users": blockedID}}
	if _, err := r.profiles.Apply(ctx, bson.M{"_id": blockerID}, update); err != nil {
		return fmt.Errorf("block user failed: %w", err)
	}
	return nil
}

func (r *profileRepository) Unblock(ctx context.Context, blockerID, blockedID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$pull": bson.M{"blocked_users": blockedID}}
	if _, err := r.profiles.Apply(ctx, bson.M{"_id": blockerID}, update); err != nil {
		return fmt.Errorf("unblock user failed: %w", err)
	}
	return nil
}

func (r *profileRepository) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := db.NewFilter().Eq("_id", blockerID).Eq("blocked_users", blockedID).Build()
	return r.profiles.Exists(ctx, filter)
}
