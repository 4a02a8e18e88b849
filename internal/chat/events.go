package chat

import (
	"encoding/json"
	"fmt"

	"github.com/Mantuja-khan/ChatApplication/internal/db"
	"github.com/Mantuja-khan/ChatApplication/internal/event"
	"github.com/Mantuja-khan/ChatApplication/internal/model"
)

// Event is the closed set of conversation events the timeline consumes.
// Both delivery channels are decoded into these variants at the
// subscription boundary; nothing downstream sees raw payloads.
type Event interface {
	isEvent()
}

// MessageInserted reports a newly created message. Sender display fields
// are present when the event came over the fast channel.
type MessageInserted struct {
	Message      model.Message
	SenderName   string
	SenderAvatar string
}

// MessageUpdated carries changed message fields to be merged into the
// known record. The message may be partial: zero fields leave the
// existing record untouched under the timeline's merge rules.
type MessageUpdated struct {
	Message model.Message
}

// MessageDeleted removes a message from the visible list entirely. Used
// for self-scoped deletion and hard store deletes.
type MessageDeleted struct {
	MessageID string
}

// BulkSeenUpdate advances every listed message to seen.
type BulkSeenUpdate struct {
	MessageIDs []string
	SeenBy     string
}

func (MessageInserted) isEvent() {}
func (MessageUpdated) isEvent()  {}
func (MessageDeleted) isEvent()  {}
func (BulkSeenUpdate) isEvent()  {}

// eventFromWs maps a fast-channel envelope into the closed event set.
// Returns nil for envelopes that carry nothing for this viewer (typing
// indicators, another user's self-scoped deletions).
func eventFromWs(ev event.WsEvent, selfID string) (Event, error) {
	switch ev.Event {
	case event.EventMessageReceived:
		var payload model.NewMessageEvent
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode new message event: %w", err)
		}
		if payload.Message.ID == "" {
			return nil, fmt.Errorf("new message event without id")
		}
		return MessageInserted{
			Message:      payload.Message,
			SenderName:   payload.SenderName,
			SenderAvatar: payload.SenderAvatar,
		}, nil

	case event.EventMessagesSeen:
		var payload model.MessagesSeenEvent
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode seen event: %w", err)
		}
		return BulkSeenUpdate{MessageIDs: payload.MessageIDs, SeenBy: payload.SeenBy}, nil

	case event.EventMessageDeleted:
		var payload model.MessageDeletedEvent
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode delete event: %w", err)
		}
		if payload.MessageID == "" {
			return nil, fmt.Errorf("delete event without message id")
		}
		if payload.Scope == model.DeleteScopeMe {
			// Only the deleter's own view changes.
			if payload.DeletedBy != selfID {
				return nil, nil
			}
			return MessageDeleted{MessageID: payload.MessageID}, nil
		}
		return MessageUpdated{Message: model.Message{
			ID:                 payload.MessageID,
			DeletedForEveryone: true,
			Content:            model.TombstoneText,
		}}, nil

	case event.EventMessageReacted:
		var payload model.MessageReactionEvent
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode reaction event: %w", err)
		}
		if payload.MessageID == "" || payload.UserID == "" {
			return nil, fmt.Errorf("reaction event missing ids")
		}
		return MessageUpdated{Message: model.Message{
			ID:        payload.MessageID,
			Reactions: map[string]string{payload.UserID: payload.Emoji},
		}}, nil

	case event.EventTyping, event.EventChatError:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown fast channel event %q", ev.Event)
	}
}

// eventFromChange maps a change-feed row into the closed event set,
// filtering out rows from other conversations. Deletes carry no document
// so they pass through; unknown ids are a no-op downstream.
func eventFromChange(change db.Change[model.Message], selfID, peerID string) Event {
	switch change.Op {
	case db.OpInsert:
		if change.Doc == nil || !change.Doc.InConversation(selfID, peerID) {
			return nil
		}
		return MessageInserted{Message: *change.Doc}

	case db.OpUpdate, db.OpReplace:
		if change.Doc == nil || !change.Doc.InConversation(selfID, peerID) {
			return nil
		}
		return MessageUpdated{Message: *change.Doc}

	case db.OpDelete:
		return MessageDeleted{MessageID: change.DocID}

	default:
		return nil
	}
}
