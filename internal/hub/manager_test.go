package hub

import (
	"testing"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/event"
	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubTapReceivesPublishedEvents(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	defer h.Stop()

	key := model.ConversationKey("a", "b")
	received := make(chan event.WsEvent, 1)
	remove := h.Listen(key, func(ev event.WsEvent) {
		received <- ev
	})
	defer remove()

	h.Publish(key, event.Make(event.EventMessageReceived, key, model.NewMessageEvent{
		Message: model.Message{ID: "m1", SenderID: "b", ReceiverID: "a"},
	}))

	select {
	case ev := <-received:
		require.Equal(t, event.EventMessageReceived, ev.Event)
		require.Equal(t, key, ev.ConversationKey)
	case <-time.After(time.Second):
		t.Fatal("tap never received the event")
	}
}

func TestHubTapScopedToConversation(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	defer h.Stop()

	received := make(chan event.WsEvent, 1)
	remove := h.Listen(model.ConversationKey("a", "b"), func(ev event.WsEvent) {
		received <- ev
	})
	defer remove()

	h.Publish(model.ConversationKey("c", "d"), event.Make(event.EventTyping, "", model.TypingEvent{}))

	select {
	case <-received:
		t.Fatal("tap received an event from another conversation")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubTapRemoval(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	defer h.Stop()

	key := model.ConversationKey("a", "b")
	var count int
	remove := h.Listen(key, func(event.WsEvent) { count++ })

	h.Publish(key, event.Make(event.EventTyping, key, model.TypingEvent{}))
	remove()
	remove() // second call is a no-op
	h.Publish(key, event.Make(event.EventTyping, key, model.TypingEvent{}))

	require.Equal(t, 1, count)
}

func TestHubConnectedUntilStopped(t *testing.T) {
	h := NewHub(nil, zap.NewNop())

	require.True(t, h.Connected())
	h.Stop()
	require.False(t, h.Connected())

	// Stop is idempotent.
	h.Stop()
}

func TestHubIsOnlineWithoutClients(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	defer h.Stop()

	require.False(t, h.IsOnline("nobody"))
	require.False(t, h.SendToUser("nobody", event.WsEvent{}))
}
