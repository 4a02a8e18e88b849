package model

import "time"

// Friendship statuses
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

// Friendship represents a friend request between two users. A single
// document covers both directions; messaging is only permitted once the
// status is accepted.
type Friendship struct {
	ID         string     `json:"id" bson:"_id"`
	SenderID   string     `json:"senderId" bson:"sender_id"`
	ReceiverID string     `json:"receiverId" bson:"receiver_id"`
	Status     string     `json:"status" bson:"status"`
	CreatedAt  time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt  *time.Time `json:"updatedAt" bson:"updated_at"`
}

// Involves reports whether the friendship is between the two given users,
// in either direction.
func (f *Friendship) Involves(userA, userB string) bool {
	return (f.SenderID == userA && f.ReceiverID == userB) ||
		(f.SenderID == userB && f.ReceiverID == userA)
}
