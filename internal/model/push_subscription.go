package model

import "time"

// PushSubscription stores a browser push endpoint for a user, as handed
// to us by the service worker's PushManager.
type PushSubscription struct {
	UserID    string           `json:"userId" bson:"_id"`
	Endpoint  string           `json:"endpoint" bson:"endpoint"`
	Keys      SubscriptionKeys `json:"keys" bson:"keys"`
	CreatedAt time.Time        `json:"createdAt" bson:"created_at"`
}

// SubscriptionKeys holds the client key material for push encryption.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh"`
	Auth   string `json:"auth" bson:"auth"`
}

// PushPayload is the JSON document delivered through web push and read
// by the service worker's push handler.
type PushPayload struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Icon       string `json:"icon,omitempty"`
	URL        string `json:"url"`
	UserID     string `json:"userId"`
	SenderName string `json:"senderName,omitempty"`
}
