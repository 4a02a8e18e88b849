package chat

import (
	"sync"

	"github.com/Mantuja-khan/ChatApplication/internal/db"
	"github.com/Mantuja-khan/ChatApplication/internal/event"
	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"go.uber.org/zap"
)

// FastChannel is the low-latency broadcast transport. The hub implements
// it in-process; a remote client would back it with a websocket.
type FastChannel interface {
	Listen(conversationKey string, fn func(event.WsEvent)) func()
	Connected() bool
}

// MessageFeed is the durable change-feed channel over the messages
// collection. db.ChangeFeed[model.Message] satisfies it.
type MessageFeed interface {
	Listen(fn func(db.Change[model.Message])) func()
}

// Subscription detaches both channel listeners when closed. Close is
// idempotent and safe to call from multiple goroutines.
type Subscription struct {
	once       sync.Once
	removeFast func()
	removeFeed func()
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.removeFast != nil {
			s.removeFast()
		}
		if s.removeFeed != nil {
			s.removeFeed()
		}
	})
}

// Subscriber merges the fast channel and the change feed into one event
// stream per conversation. No ordering is guaranteed across the two
// sources; consumers must be idempotent and order-insensitive, which the
// Timeline is.
type Subscriber struct {
	fast   FastChannel
	feed   MessageFeed
	logger *zap.Logger
}

func NewSubscriber(fast FastChannel, feed MessageFeed, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		fast:   fast,
		feed:   feed,
		logger: logger,
	}
}

// Subscribe attaches listeners on both channels scoped to the
// conversation between selfID and peerID. A missing or disconnected fast
// channel is not an error: the change feed alone still delivers every
// committed write, just slower.
func (s *Subscriber) Subscribe(selfID, peerID string, onEvent func(Event)) *Subscription {
	conversationKey := model.ConversationKey(selfID, peerID)
	sub := &Subscription{}

	if s.fast != nil && s.fast.Connected() {
		sub.removeFast = s.fast.Listen(conversationKey, func(ev event.WsEvent) {
			decoded, err := eventFromWs(ev, selfID)
			if err != nil {
				s.logger.Warn("invalid fast channel event",
					zap.String("event", ev.Event),
					zap.Error(err),
				)
				return
			}
			if decoded != nil {
				onEvent(decoded)
			}
		})
	} else {
		s.logger.Debug("fast channel unavailable, relying on change feed",
			zap.String("conversation", conversationKey),
		)
	}

	if s.feed != nil {
		sub.removeFeed = s.feed.Listen(func(change db.Change[model.Message]) {
			if decoded := eventFromChange(change, selfID, peerID); decoded != nil {
				onEvent(decoded)
			}
		})
	}

	return sub
}
