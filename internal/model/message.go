package model

import (
	"strings"
	"time"
)

// Delivery states for a message. The state only moves forward:
// sent -> delivered -> seen.
const (
	DeliveryStateSent      = 1
	DeliveryStateDelivered = 2
	DeliveryStateSeen      = 3
)

// Message kinds
const (
	MessageKindText  = "text"
	MessageKindImage = "image"
)

// TombstoneText replaces the content of a message once it has been
// deleted for everyone.
const TombstoneText = "This message was deleted"

// Message represents a chat message in MongoDB. The document id is the
// message uuid so change-feed delete events carry the id directly.
type Message struct {
	ID                 string            `json:"id" bson:"_id"`
	SenderID           string            `json:"senderId" bson:"sender_id"`
	ReceiverID         string            `json:"receiverId" bson:"receiver_id"`
	Content            string            `json:"content" bson:"content"`
	Kind               string            `json:"kind" bson:"kind"`
	ImageURL           *string           `json:"imageUrl" bson:"image_url"`
	CreatedAt          time.Time         `json:"createdAt" bson:"created_at"`
	DeliveryState      int               `json:"deliveryState" bson:"delivery_state"`
	DeletedForEveryone bool              `json:"deletedForEveryone" bson:"deleted_for_everyone"`
	Reactions          map[string]string `json:"reactions" bson:"reactions"`
}

// MessageDeletion records a "delete for me" request. The message stays
// visible to the other participant.
type MessageDeletion struct {
	MessageID string    `json:"messageId" bson:"message_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	DeletedAt time.Time `json:"deletedAt" bson:"deleted_at"`
}

// ConversationKey returns the canonical key for the unordered pair of
// participants. Both orderings map to the same key.
func ConversationKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// InConversation reports whether the message belongs to the conversation
// between the two given users, in either direction.
func (m *Message) InConversation(userA, userB string) bool {
	return (m.SenderID == userA && m.ReceiverID == userB) ||
		(m.SenderID == userB && m.ReceiverID == userA)
}

// PeerOf returns the other participant from the viewer's perspective.
func (m *Message) PeerOf(viewerID string) string {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Preview returns the short text shown in chat lists for this message.
func (m *Message) Preview(limit int) string {
	if m.DeletedForEveryone {
		return TombstoneText
	}
	if m.Kind == MessageKindImage {
		return "\U0001F4F7 Image"
	}
	return TruncateRunes(m.Content, limit)
}

// TruncateRunes bounds s to limit runes, appending "..." when cut.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
