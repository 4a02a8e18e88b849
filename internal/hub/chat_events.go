package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/event"
	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"go.uber.org/zap"
)

// handleEvent validates an inbound client event and relays it to the
// conversation room. The hub never writes message content to the store;
// clients persist through the REST API and the change feed picks the
// write up. The one store touch here is the delivered marker, because
// only the hub knows whether the receiver is connected.
func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	switch ev.Event {
	case event.EventMessageSend:
		h.handleMessageSend(ev, c)
	case event.EventMessagesSeen:
		h.handleMessagesSeen(ev, c)
	case event.EventMessageDelete:
		h.handleMessageDelete(ev, c)
	case event.EventMessageReact:
		h.handleMessageReact(ev, c)
	case event.EventTyping:
		h.handleTyping(ev, c)
	default:
		h.logger.Warn("unknown event type", zap.String("event", ev.Event))
		h.sendError(c, "unknown_event", "Unrecognized event type")
	}
}

func (h *Hub) handleMessageSend(ev event.WsEvent, c *Client) {
	var payload model.NewMessageEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.logger.Warn("failed to unmarshal new message payload", zap.Error(err))
		h.sendError(c, "invalid_payload", "Failed to parse message")
		return
	}

	msg := payload.Message
	if msg.ID == "" || msg.SenderID != c.userID {
		h.sendError(c, "invalid_message", "Message sender must match the connected user")
		return
	}
	if !msg.InConversation(c.userID, c.peerID) {
		h.sendError(c, "wrong_conversation", "Message does not belong to this conversation")
		return
	}

	// Receiver is connected right now, so the message counts as
	// delivered; the durable update reaches subscribers via the feed.
	if h.IsOnline(msg.ReceiverID) {
		go h.markDelivered(msg.ID)
	}

	h.Publish(c.ConversationKey, event.Make(event.EventMessageReceived, c.ConversationKey, payload))
}

func (h *Hub) handleMessagesSeen(ev event.WsEvent, c *Client) {
	var payload model.MessagesSeenEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.sendError(c, "invalid_payload", "Failed to parse seen update")
		return
	}
	if len(payload.MessageIDs) == 0 {
		return
	}

	payload.SeenBy = c.userID
	if payload.Timestamp == 0 {
		payload.Timestamp = time.Now().Unix()
	}

	h.Publish(c.ConversationKey, event.Make(event.EventMessagesSeen, c.ConversationKey, payload))
}

func (h *Hub) handleMessageDelete(ev event.WsEvent, c *Client) {
	var payload model.MessageDeletedEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.sendError(c, "invalid_payload", "Failed to parse delete event")
		return
	}
	if payload.MessageID == "" {
		h.sendError(c, "invalid_message_id", "MessageID is required")
		return
	}

	payload.DeletedBy = c.userID
	if payload.Scope == "" {
		payload.Scope = model.DeleteScopeEveryone
	}

	h.Publish(c.ConversationKey, event.Make(event.EventMessageDeleted, c.ConversationKey, payload))
}

func (h *Hub) handleMessageReact(ev event.WsEvent, c *Client) {
	var payload model.MessageReactionEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.sendError(c, "invalid_payload", "Failed to parse reaction")
		return
	}
	if payload.MessageID == "" {
		h.sendError(c, "invalid_message_id", "MessageID is required")
		return
	}

	payload.UserID = c.userID
	h.Publish(c.ConversationKey, event.Make(event.EventMessageReacted, c.ConversationKey, payload))
}

func (h *Hub) handleTyping(ev event.WsEvent, c *Client) {
	var payload model.TypingEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return
	}

	payload.UserID = c.userID
	h.Publish(c.ConversationKey, event.Make(event.EventTyping, c.ConversationKey, payload))
}

func (h *Hub) markDelivered(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.messageRepo.MarkDelivered(ctx, []string{messageID}); err != nil {
		h.logger.Warn("failed to mark message delivered",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}

func (h *Hub) sendError(c *Client, code, message string) {
	payload := model.ChatErrorEvent{Code: code, Message: message}
	c.SafeSend(event.Make(event.EventChatError, c.ConversationKey, payload), sendTimeout)
}
