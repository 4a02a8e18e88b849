package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/event"
	"github.com/Mantuja-khan/ChatApplication/internal/model"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFriends     = errors.New("users must be friends to exchange messages")
	ErrBlocked        = errors.New("messaging is blocked between these users")
	ErrMessageDeleted = errors.New("message was deleted for everyone")
	ErrEmptyMessage   = errors.New("message content cannot be empty")
)

// Broadcaster publishes events on the fast channel. The hub satisfies
// it; tests substitute a recorder.
type Broadcaster interface {
	Publish(conversationKey string, ev event.WsEvent)
}

type ChatService interface {
	GetMessages(ctx context.Context, viewerID, peerID string) ([]model.Message, error)
	SendMessage(ctx context.Context, senderID, receiverID, content, kind string, imageURL *string) (*model.Message, error)
	DeleteMessage(ctx context.Context, messageID, userID, scope string) error
	DeleteChat(ctx context.Context, userID, peerID string) error
	React(ctx context.Context, messageID, userID, emoji string) error
	MarkSeen(ctx context.Context, viewerID, peerID string, messageIDs []string) error
	MarkDelivered(ctx context.Context, messageIDs []string) error
	LatestMessages(ctx context.Context, userID string) ([]model.Message, error)
	UnreadCount(ctx context.Context, viewerID, peerID string) (int64, error)
}

type chatService struct {
	messages    repo.MessageRepository
	friendships repo.FriendshipRepository
	profiles    repo.ProfileRepository
	broadcaster Broadcaster
	logger      *zap.Logger
}

func NewChatService(messages repo.MessageRepository, friendships repo.FriendshipRepository, profiles repo.ProfileRepository, broadcaster Broadcaster, logger *zap.Logger) ChatService {
	return &chatService{
		messages:    messages,
		friendships: friendships,
		profiles:    profiles,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// GetMessages returns the conversation for the viewer. Permission
// failures yield an empty list, not an error: a blocked or non-friend
// pair simply has no visible conversation. Messages the viewer deleted
// for themselves are filtered out, and incoming unseen messages are
// marked seen as a side effect of the fetch.
func (s *chatService) GetMessages(ctx context.Context, viewerID, peerID string) ([]model.Message, error) {
	if err := s.checkPermission(ctx, viewerID, peerID); err != nil {
		if errors.Is(err, ErrNotFriends) || errors.Is(err, ErrBlocked) {
			return []model.Message{}, nil
		}
		return nil, err
	}

	msgs, err := s.messages.GetConversation(ctx, viewerID, peerID)
	if err != nil {
		return nil, err
	}

	s.markIncomingSeen(ctx, viewerID, peerID, msgs)

	deleted, err := s.messages.DeletedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	visible := Filter(msgs, func(m model.Message) bool {
		return !deleted[m.ID]
	})
	if visible == nil {
		visible = []model.Message{}
	}
	return visible, nil
}

// SendMessage gates on friendship and blocks, stores the message, and
// broadcasts it with the sender's display fields attached. On any error
// no partial state is left behind, so the caller can keep the draft and
// retry.
func (s *chatService) SendMessage(ctx context.Context, senderID, receiverID, content, kind string, imageURL *string) (*model.Message, error) {
	if err := s.checkPermission(ctx, senderID, receiverID); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = model.MessageKindText
	}
	if content == "" && kind != model.MessageKindImage {
		return nil, ErrEmptyMessage
	}

	msg := &model.Message{
		ID:            uuid.New().String(),
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Content:       content,
		Kind:          kind,
		ImageURL:      imageURL,
		CreatedAt:     time.Now().UTC(),
		DeliveryState: model.DeliveryStateSent,
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	payload := model.NewMessageEvent{Message: *msg}
	if sender, err := s.profiles.Get(ctx, senderID); err == nil {
		payload.SenderName = sender.DisplayName()
		if sender != nil {
			payload.SenderAvatar = sender.AvatarURL
		}
	}

	key := model.ConversationKey(senderID, receiverID)
	s.broadcaster.Publish(key, event.Make(event.EventMessageReceived, key, payload))

	return msg, nil
}

// DeleteMessage handles both scopes. "everyone" tombstones the message
// for both participants; "me" records a self-scoped deletion. Both are
// broadcast; receivers drop self-scoped deletions that are not theirs.
func (s *chatService) DeleteMessage(ctx context.Context, messageID, userID, scope string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("message lookup failed: %w", err)
	}

	switch scope {
	case model.DeleteScopeEveryone:
		if err := s.messages.Tombstone(ctx, messageID, userID); err != nil {
			return err
		}
	case model.DeleteScopeMe:
		if err := s.messages.DeleteForUser(ctx, messageID, userID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown delete scope %q", scope)
	}

	key := model.ConversationKey(msg.SenderID, msg.ReceiverID)
	payload := model.MessageDeletedEvent{
		MessageID: messageID,
		DeletedBy: userID,
		Scope:     scope,
	}
	s.broadcaster.Publish(key, event.Make(event.EventMessageDeleted, key, payload))
	return nil
}

func (s *chatService) DeleteChat(ctx context.Context, userID, peerID string) error {
	return s.messages.DeleteConversation(ctx, userID, peerID)
}

// React stores a single emoji per user per message; a second reaction
// from the same user replaces the first. Tombstoned messages reject
// reactions.
func (s *chatService) React(ctx context.Context, messageID, userID, emoji string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("message lookup failed: %w", err)
	}
	if msg.DeletedForEveryone {
		return ErrMessageDeleted
	}

	if err := s.messages.SetReaction(ctx, messageID, userID, emoji); err != nil {
		return err
	}

	key := model.ConversationKey(msg.SenderID, msg.ReceiverID)
	payload := model.MessageReactionEvent{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	}
	s.broadcaster.Publish(key, event.Make(event.EventMessageReacted, key, payload))
	return nil
}

// MarkSeen advances the listed messages and broadcasts the update so the
// sender's view moves to seen in real time.
func (s *chatService) MarkSeen(ctx context.Context, viewerID, peerID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	if err := s.messages.MarkSeen(ctx, messageIDs); err != nil {
		return err
	}

	key := model.ConversationKey(viewerID, peerID)
	payload := model.MessagesSeenEvent{
		MessageIDs: messageIDs,
		SeenBy:     viewerID,
		Timestamp:  time.Now().Unix(),
	}
	s.broadcaster.Publish(key, event.Make(event.EventMessagesSeen, key, payload))
	return nil
}

// MarkDelivered advances messages to delivered. No broadcast: the
// durable update reaches subscribers through the change feed.
func (s *chatService) MarkDelivered(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return s.messages.MarkDelivered(ctx, messageIDs)
}

func (s *chatService) LatestMessages(ctx context.Context, userID string) ([]model.Message, error) {
	return s.messages.LatestPerPeer(ctx, userID)
}

func (s *chatService) UnreadCount(ctx context.Context, viewerID, peerID string) (int64, error) {
	return s.messages.UnreadCount(ctx, viewerID, peerID)
}

// markIncomingSeen is the fetch-time side of read receipts. A failure
// here never fails the fetch; the next fetch or the timeline's debounced
// flush will retry.
func (s *chatService) markIncomingSeen(ctx context.Context, viewerID, peerID string, msgs []model.Message) {
	unseen := make([]string, 0)
	for _, m := range msgs {
		if m.ReceiverID == viewerID && m.DeliveryState < model.DeliveryStateSeen {
			unseen = append(unseen, m.ID)
		}
	}
	if len(unseen) == 0 {
		return
	}

	if err := s.MarkSeen(ctx, viewerID, peerID, unseen); err != nil {
		s.logger.Warn("failed to mark messages seen on fetch",
			zap.Int("count", len(unseen)),
			zap.Error(err),
		)
	}
}

// checkPermission enforces the messaging gate: both directions unblocked
// and friendship accepted.
func (s *chatService) checkPermission(ctx context.Context, userA, userB string) error {
	blocked, err := s.profiles.IsBlocked(ctx, userA, userB)
	if err != nil {
		return err
	}
	if !blocked {
		blocked, err = s.profiles.IsBlocked(ctx, userB, userA)
		if err != nil {
			return err
		}
	}
	if blocked {
		return ErrBlocked
	}

	friendship, err := s.friendships.Status(ctx, userA, userB)
	if err != nil {
		return err
	}
	if friendship == nil || friendship.Status != model.FriendshipAccepted {
		return ErrNotFriends
	}
	return nil
}
