package model

import (
	"strings"
	"time"
)

// Profile represents a user profile document in MongoDB. Authentication
// itself is handled by the identity platform; we only mirror the fields
// the chat layer needs.
type Profile struct {
	ID           string     `json:"id" bson:"_id"`
	Name         string     `json:"name" bson:"name"`
	Email        string     `json:"email" bson:"email"`
	AvatarURL    string     `json:"avatarUrl" bson:"avatar_url"`
	BlockedUsers []string   `json:"blockedUsers" bson:"blocked_users"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt    *time.Time `json:"updatedAt" bson:"updated_at"`
}

// DisplayName returns the name shown in notifications: the profile name,
// falling back to the local part of the email, then "Someone".
func (p *Profile) DisplayName() string {
	if p == nil {
		return "Someone"
	}
	if p.Name != "" {
		return p.Name
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return "Someone"
}

// HasBlocked reports whether this profile has blocked the given user.
func (p *Profile) HasBlocked(userID string) bool {
	if p == nil {
		return false
	}
	for _, id := range p.BlockedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
