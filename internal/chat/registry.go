package chat

import (
	"sync"

	"github.com/Mantuja-khan/ChatApplication/internal/model"
)

// Registry owns the active subscriptions, one per conversation key.
// Opening a key that already has a handle tears the old one down first,
// synchronously, so events from the previous conversation can never
// leak into the new one.
type Registry struct {
	subscriber *Subscriber

	mu     sync.Mutex
	active map[string]*Subscription
}

func NewRegistry(subscriber *Subscriber) *Registry {
	return &Registry{
		subscriber: subscriber,
		active:     make(map[string]*Subscription),
	}
}

// Open subscribes to the conversation between selfID and peerID,
// replacing any prior subscription for the same key.
func (r *Registry) Open(selfID, peerID string, onEvent func(Event)) *Subscription {
	key := model.ConversationKey(selfID, peerID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.active[key]; ok {
		prev.Close()
	}

	sub := r.subscriber.Subscribe(selfID, peerID, onEvent)
	r.active[key] = sub
	return sub
}

// Close tears down the subscription for the conversation, if any.
func (r *Registry) Close(selfID, peerID string) {
	key := model.ConversationKey(selfID, peerID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if sub, ok := r.active[key]; ok {
		sub.Close()
		delete(r.active, key)
	}
}

// CloseAll tears down every active subscription.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, sub := range r.active {
		sub.Close()
		delete(r.active, key)
	}
}
