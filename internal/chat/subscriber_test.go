package chat

import (
	"testing"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/db"
	"github.com/Mantuja-khan/ChatApplication/internal/event"
	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFast struct {
	connected bool
	listeners map[string][]func(event.WsEvent)
	removed   int
}

func newFakeFast() *fakeFast {
	return &fakeFast{
		connected: true,
		listeners: make(map[string][]func(event.WsEvent)),
	}
}

func (f *fakeFast) Listen(conversationKey string, fn func(event.WsEvent)) func() {
	f.listeners[conversationKey] = append(f.listeners[conversationKey], fn)
	return func() { f.removed++ }
}

func (f *fakeFast) Connected() bool { return f.connected }

func (f *fakeFast) publish(conversationKey string, ev event.WsEvent) {
	for _, fn := range f.listeners[conversationKey] {
		fn(ev)
	}
}

type fakeFeed struct {
	sinks   []func(db.Change[model.Message])
	removed int
}

func (f *fakeFeed) Listen(fn func(db.Change[model.Message])) func() {
	f.sinks = append(f.sinks, fn)
	return func() { f.removed++ }
}

func (f *fakeFeed) emit(change db.Change[model.Message]) {
	for _, fn := range f.sinks {
		fn(change)
	}
}

func collectEvents(dst *[]Event) func(Event) {
	return func(ev Event) { *dst = append(*dst, ev) }
}

func TestSubscriberMergesBothChannels(t *testing.T) {
	fast := newFakeFast()
	feed := &fakeFeed{}
	s := NewSubscriber(fast, feed, zap.NewNop())

	var got []Event
	sub := s.Subscribe(testSelf, testPeer, collectEvents(&got))
	defer sub.Close()

	msg := testMessage("m1", testPeer, time.Now())
	key := model.ConversationKey(testSelf, testPeer)

	fast.publish(key, event.Make(event.EventMessageReceived, key, model.NewMessageEvent{Message: msg, SenderName: "Bob"}))
	feed.emit(db.Change[model.Message]{Op: db.OpInsert, Doc: &msg, DocID: msg.ID})

	require.Len(t, got, 2)
	require.IsType(t, MessageInserted{}, got[0])
	require.Equal(t, "Bob", got[0].(MessageInserted).SenderName)
	require.IsType(t, MessageInserted{}, got[1])
}

func TestSubscriberWorksWithoutFastChannel(t *testing.T) {
	feed := &fakeFeed{}
	s := NewSubscriber(nil, feed, zap.NewNop())

	var got []Event
	sub := s.Subscribe(testSelf, testPeer, collectEvents(&got))
	defer sub.Close()

	msg := testMessage("m1", testPeer, time.Now())
	feed.emit(db.Change[model.Message]{Op: db.OpInsert, Doc: &msg, DocID: msg.ID})

	require.Len(t, got, 1)
}

func TestSubscriberSkipsDisconnectedFastChannel(t *testing.T) {
	fast := newFakeFast()
	fast.connected = false
	feed := &fakeFeed{}
	s := NewSubscriber(fast, feed, zap.NewNop())

	var got []Event
	sub := s.Subscribe(testSelf, testPeer, collectEvents(&got))
	defer sub.Close()

	require.Empty(t, fast.listeners)
}

func TestSubscriberFiltersOtherConversations(t *testing.T) {
	feed := &fakeFeed{}
	s := NewSubscriber(nil, feed, zap.NewNop())

	var got []Event
	sub := s.Subscribe(testSelf, testPeer, collectEvents(&got))
	defer sub.Close()

	stranger := model.Message{
		ID:         "x1",
		SenderID:   "user-c",
		ReceiverID: "user-d",
		CreatedAt:  time.Now(),
	}
	feed.emit(db.Change[model.Message]{Op: db.OpInsert, Doc: &stranger, DocID: stranger.ID})

	require.Empty(t, got)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	fast := newFakeFast()
	feed := &fakeFeed{}
	s := NewSubscriber(fast, feed, zap.NewNop())

	sub := s.Subscribe(testSelf, testPeer, func(Event) {})
	sub.Close()
	sub.Close()
	sub.Close()

	require.Equal(t, 1, fast.removed)
	require.Equal(t, 1, feed.removed)
}

func TestRegistryReplacesPriorSubscription(t *testing.T) {
	fast := newFakeFast()
	feed := &fakeFeed{}
	r := NewRegistry(NewSubscriber(fast, feed, zap.NewNop()))

	first := r.Open(testSelf, testPeer, func(Event) {})
	second := r.Open(testSelf, testPeer, func(Event) {})
	require.NotSame(t, first, second)

	// Opening again tore the first subscription down.
	require.Equal(t, 1, fast.removed)
	require.Equal(t, 1, feed.removed)
}

func TestRegistryCloseAll(t *testing.T) {
	fast := newFakeFast()
	feed := &fakeFeed{}
	r := NewRegistry(NewSubscriber(fast, feed, zap.NewNop()))

	r.Open(testSelf, testPeer, func(Event) {})
	r.Open(testSelf, "user-c", func(Event) {})
	r.CloseAll()

	require.Equal(t, 2, fast.removed)
	require.Equal(t, 2, feed.removed)

	// Closing an already closed key is a no-op.
	r.Close(testSelf, testPeer)
	require.Equal(t, 2, fast.removed)
}
