package event

import "encoding/json"

// Chat event types - client to server
const (
	EventMessageSend   = "message:send"
	EventMessagesSeen  = "message:seen"
	EventMessageDelete = "message:delete"
	EventMessageReact  = "message:react"
	EventTyping        = "typing"
)

// Chat event types - server to client
const (
	EventMessageReceived = "message:received"
	EventMessageDeleted  = "message:deleted"
	EventMessageReacted  = "message:reacted"
	EventChatError       = "chat:error"
)

// WsEvent is the envelope for everything crossing the websocket. The
// payload shape depends on Event and is decoded at the boundary.
type WsEvent struct {
	Event           string          `json:"event"`
	ConversationKey string          `json:"conversationKey"`
	Payload         json.RawMessage `json:"payload"`
}

// Make builds an envelope, marshalling the payload. Marshal errors are
// impossible for our payload structs so they are swallowed here.
func Make(name, conversationKey string, payload any) WsEvent {
	raw, _ := json.Marshal(payload)
	return WsEvent{
		Event:           name,
		ConversationKey: conversationKey,
		Payload:         raw,
	}
}
