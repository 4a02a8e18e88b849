package push

import (
	"context"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/chat"
	"github.com/Mantuja-khan/ChatApplication/internal/db"
	"github.com/Mantuja-khan/ChatApplication/internal/model"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"

	"go.uber.org/zap"
)

// Presence answers whether a user currently holds a fast-channel
// connection. The hub satisfies it.
type Presence interface {
	IsOnline(userID string) bool
}

// Notifier watches the message change feed and pushes a notification to
// receivers who are not connected to the fast channel. Connected users
// get the message in-UI; pushing to them as well would double-notify.
type Notifier struct {
	relay      *Relay
	dispatcher *chat.Dispatcher
	profiles   repo.ProfileRepository
	presence   Presence
	logger     *zap.Logger

	stopFeed func()
}

func NewNotifier(relay *Relay, dispatcher *chat.Dispatcher, profiles repo.ProfileRepository, presence Presence, logger *zap.Logger) *Notifier {
	return &Notifier{
		relay:      relay,
		dispatcher: dispatcher,
		profiles:   profiles,
		presence:   presence,
		logger:     logger,
	}
}

// Start attaches the notifier to the feed. Only inserts matter here;
// seen updates and deletions never raise notifications.
func (n *Notifier) Start(feed chat.MessageFeed) {
	n.stopFeed = feed.Listen(n.onChange)
}

func (n *Notifier) Stop() {
	if n.stopFeed != nil {
		n.stopFeed()
	}
}

func (n *Notifier) onChange(change db.Change[model.Message]) {
	if change.Op != db.OpInsert || change.Doc == nil {
		return
	}
	msg := *change.Doc
	if msg.DeletedForEveryone {
		return
	}
	if n.presence.IsOnline(msg.ReceiverID) {
		return
	}
	go n.push(msg)
}

func (n *Notifier) push(msg model.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sender, err := n.profiles.Get(ctx, msg.SenderID)
	if err != nil {
		n.logger.Warn("sender profile lookup failed for push",
			zap.String("sender_id", msg.SenderID),
			zap.Error(err),
		)
	}

	// An offline receiver has no visible window anywhere.
	decision := n.dispatcher.Dispatch(msg, sender, chat.FocusState{}, chat.DeviceDesktop)
	if decision.Suppress {
		return
	}

	payload := n.dispatcher.PushPayload(decision)
	payload.SenderName = sender.DisplayName()

	if err := n.relay.Send(ctx, msg.ReceiverID, payload); err != nil {
		n.logger.Warn("push delivery failed",
			zap.String("receiver_id", msg.ReceiverID),
			zap.Error(err),
		)
	}
}
