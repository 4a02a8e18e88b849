package chat

import (
	"testing"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/db"
	"github.com/Mantuja-khan/ChatApplication/internal/event"
	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"github.com/stretchr/testify/require"
)

func TestEventFromWsNewMessage(t *testing.T) {
	msg := testMessage("m1", testPeer, time.Now())
	ev := event.Make(event.EventMessageReceived, "k", model.NewMessageEvent{Message: msg, SenderName: "Bob"})

	decoded, err := eventFromWs(ev, testSelf)
	require.NoError(t, err)

	inserted, ok := decoded.(MessageInserted)
	require.True(t, ok)
	require.Equal(t, "m1", inserted.Message.ID)
	require.Equal(t, "Bob", inserted.SenderName)
}

func TestEventFromWsSeen(t *testing.T) {
	ev := event.Make(event.EventMessagesSeen, "k", model.MessagesSeenEvent{
		MessageIDs: []string{"m1", "m2"},
		SeenBy:     testPeer,
	})

	decoded, err := eventFromWs(ev, testSelf)
	require.NoError(t, err)

	seen, ok := decoded.(BulkSeenUpdate)
	require.True(t, ok)
	require.Equal(t, []string{"m1", "m2"}, seen.MessageIDs)
	require.Equal(t, testPeer, seen.SeenBy)
}

func TestEventFromWsDeleteForEveryone(t *testing.T) {
	ev := event.Make(event.EventMessageDeleted, "k", model.MessageDeletedEvent{
		MessageID: "m1",
		DeletedBy: testPeer,
		Scope:     model.DeleteScopeEveryone,
	})

	decoded, err := eventFromWs(ev, testSelf)
	require.NoError(t, err)

	updated, ok := decoded.(MessageUpdated)
	require.True(t, ok)
	require.True(t, updated.Message.DeletedForEveryone)
	require.Equal(t, model.TombstoneText, updated.Message.Content)
}

func TestEventFromWsDeleteForMeScoping(t *testing.T) {
	// Own self-scoped deletion removes the message.
	own := event.Make(event.EventMessageDeleted, "k", model.MessageDeletedEvent{
		MessageID: "m1",
		DeletedBy: testSelf,
		Scope:     model.DeleteScopeMe,
	})
	decoded, err := eventFromWs(own, testSelf)
	require.NoError(t, err)
	require.Equal(t, MessageDeleted{MessageID: "m1"}, decoded)

	// The peer's self-scoped deletion is invisible to this viewer.
	theirs := event.Make(event.EventMessageDeleted, "k", model.MessageDeletedEvent{
		MessageID: "m1",
		DeletedBy: testPeer,
		Scope:     model.DeleteScopeMe,
	})
	decoded, err = eventFromWs(theirs, testSelf)
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestEventFromWsReaction(t *testing.T) {
	ev := event.Make(event.EventMessageReacted, "k", model.MessageReactionEvent{
		MessageID: "m1",
		UserID:    testPeer,
		Emoji:     "👍",
	})

	decoded, err := eventFromWs(ev, testSelf)
	require.NoError(t, err)

	updated, ok := decoded.(MessageUpdated)
	require.True(t, ok)
	require.Equal(t, map[string]string{testPeer: "👍"}, updated.Message.Reactions)
}

func TestEventFromWsTypingIsSilent(t *testing.T) {
	ev := event.Make(event.EventTyping, "k", model.TypingEvent{UserID: testPeer, IsTyping: true})

	decoded, err := eventFromWs(ev, testSelf)
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestEventFromWsRejectsMalformed(t *testing.T) {
	_, err := eventFromWs(event.WsEvent{Event: event.EventMessageReceived, Payload: []byte("{")}, testSelf)
	require.Error(t, err)

	_, err = eventFromWs(event.Make(event.EventMessageReceived, "k", model.NewMessageEvent{}), testSelf)
	require.Error(t, err, "message without id is rejected")

	_, err = eventFromWs(event.WsEvent{Event: "bogus", Payload: []byte("{}")}, testSelf)
	require.Error(t, err)
}

func TestEventFromChangeDelete(t *testing.T) {
	decoded := eventFromChange(db.Change[model.Message]{Op: db.OpDelete, DocID: "m1"}, testSelf, testPeer)
	require.Equal(t, MessageDeleted{MessageID: "m1"}, decoded)
}

func TestEventFromChangeUpdate(t *testing.T) {
	msg := testMessage("m1", testPeer, time.Now())
	msg.DeliveryState = model.DeliveryStateSeen

	decoded := eventFromChange(db.Change[model.Message]{Op: db.OpUpdate, Doc: &msg, DocID: msg.ID}, testSelf, testPeer)
	updated, ok := decoded.(MessageUpdated)
	require.True(t, ok)
	require.Equal(t, model.DeliveryStateSeen, updated.Message.DeliveryState)
}

func TestEventFromChangeIgnoresNilDocUpdates(t *testing.T) {
	decoded := eventFromChange(db.Change[model.Message]{Op: db.OpUpdate, DocID: "m1"}, testSelf, testPeer)
	require.Nil(t, decoded)
}
