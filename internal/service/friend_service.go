package service

import (
	"context"
	"errors"

	"github.com/Mantuja-khan/ChatApplication/internal/model"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"

	"go.uber.org/zap"
)

var ErrSelfRequest = errors.New("cannot send a friend request to yourself")

// Pusher delivers a best-effort web push. The push relay satisfies it;
// a nil pusher disables the accept notification.
type Pusher interface {
	Send(ctx context.Context, userID string, payload model.PushPayload) error
}

type FriendService interface {
	SendRequest(ctx context.Context, senderID, receiverID string) (*model.Friendship, error)
	Accept(ctx context.Context, requestID string) (*model.Friendship, error)
	Reject(ctx context.Context, requestID string) (*model.Friendship, error)
	Status(ctx context.Context, userA, userB string) (*model.Friendship, error)
	Pending(ctx context.Context, receiverID string) ([]model.Friendship, error)
	Contacts(ctx context.Context, userID string) ([]model.Friendship, error)
	Block(ctx context.Context, blockerID, blockedID string) error
	Unblock(ctx context.Context, blockerID, blockedID string) error
}

type friendService struct {
	friendships repo.FriendshipRepository
	profiles    repo.ProfileRepository
	pusher      Pusher
	logger      *zap.Logger
}

func NewFriendService(friendships repo.FriendshipRepository, profiles repo.ProfileRepository, pusher Pusher, logger *zap.Logger) FriendService {
	return &friendService{
		friendships: friendships,
		profiles:    profiles,
		pusher:      pusher,
		logger:      logger,
	}
}

// SendRequest creates a pending friend request. A block in either
// direction rejects the request; a request already on file in either
// direction is returned unchanged.
func (s *friendService) SendRequest(ctx context.Context, senderID, receiverID string) (*model.Friendship, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	blocked, err := s.profiles.IsBlocked(ctx, receiverID, senderID)
	if err != nil {
		return nil, err
	}
	if !blocked {
		blocked, err = s.profiles.IsBlocked(ctx, senderID, receiverID)
		if err != nil {
			return nil, err
		}
	}
	if blocked {
		return nil, ErrBlocked
	}

	return s.friendships.Request(ctx, senderID, receiverID)
}

// Accept marks the request accepted and tells the original sender, who
// may have been waiting since long before this session.
func (s *friendService) Accept(ctx context.Context, requestID string) (*model.Friendship, error) {
	friendship, err := s.friendships.Accept(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.notifyAccepted(ctx, friendship)
	}
	return friendship, nil
}

// notifyAccepted pushes a best-effort notification to the request
// sender. Failures are logged and swallowed; the acceptance itself
// already committed.
func (s *friendService) notifyAccepted(ctx context.Context, friendship *model.Friendship) {
	accepter, err := s.profiles.Get(ctx, friendship.ReceiverID)
	if err != nil {
		s.logger.Warn("accepter profile lookup failed", zap.Error(err))
	}

	payload := model.PushPayload{
		Title:   "Friend request accepted",
		Message: accepter.DisplayName() + " accepted your friend request",
		UserID:  friendship.ReceiverID,
	}
	if err := s.pusher.Send(ctx, friendship.SenderID, payload); err != nil {
		s.logger.Warn("friend accept push failed",
			zap.String("sender_id", friendship.SenderID),
			zap.Error(err),
		)
	}
}

func (s *friendService) Reject(ctx context.Context, requestID string) (*model.Friendship, error) {
	return s.friendships.Reject(ctx, requestID)
}

func (s *friendService) Status(ctx context.Context, userA, userB string) (*model.Friendship, error) {
	return s.friendships.Status(ctx, userA, userB)
}

func (s *friendService) Pending(ctx context.Context, receiverID string) ([]model.Friendship, error) {
	return s.friendships.Pending(ctx, receiverID)
}

func (s *friendService) Contacts(ctx context.Context, userID string) ([]model.Friendship, error) {
	return s.friendships.Contacts(ctx, userID)
}

func (s *friendService) Block(ctx context.Context, blockerID, blockedID string) error {
	if err := s.profiles.Block(ctx, blockerID, blockedID); err != nil {
		return err
	}
	s.logger.Info("user blocked",
		zap.String("blocker_id", blockerID),
		zap.String("blocked_id", blockedID),
	)
	return nil
}

func (s *friendService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.profiles.Unblock(ctx, blockerID, blockedID)
}
