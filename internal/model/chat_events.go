package model

// NewMessageEvent is broadcast on the fast channel when a message is
// created. Sender display fields ride along so receivers can raise a
// notification without an extra profile lookup.
type NewMessageEvent struct {
	Message      Message `json:"message"`
	SenderName   string  `json:"senderName"`
	SenderAvatar string  `json:"senderAvatar"`
}

// MessagesSeenEvent marks a batch of messages as seen by one user.
type MessagesSeenEvent struct {
	MessageIDs []string `json:"messageIds"`
	SeenBy     string   `json:"seenBy"`
	Timestamp  int64    `json:"timestamp"`
}

// MessageDeletedEvent signals a deletion. Scope "everyone" tombstones the
// message for both participants; scope "me" only affects the deleter.
type MessageDeletedEvent struct {
	MessageID string `json:"messageId"`
	DeletedBy string `json:"deletedBy"`
	Scope     string `json:"scope"`
}

// MessageReactionEvent carries a single-emoji reaction. A later reaction
// from the same user replaces the earlier one.
type MessageReactionEvent struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	Emoji     string `json:"emoji"`
}

// TypingEvent relays a typing indicator between the two participants.
type TypingEvent struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// ChatErrorEvent is sent back to a client when an inbound event is
// rejected.
type ChatErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Deletion scopes
const (
	DeleteScopeEveryone = "everyone"
	DeleteScopeMe       = "me"
)
