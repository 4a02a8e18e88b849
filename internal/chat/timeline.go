package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/model"

	"go.uber.org/zap"
)

// seenDebounce batches mark-seen writes when messages arrive in quick
// succession.
const seenDebounce = 100 * time.Millisecond

// SeenFlusher propagates a seen update back to the durable store and the
// fast channel.
type SeenFlusher func(messageIDs []string) error

// NotifyFunc receives each peer-authored message exactly once, no matter
// how many channels deliver it. The receiver decides whether a
// notification is actually raised.
type NotifyFunc func(msg model.Message, senderName, senderAvatar string)

// Timeline is the canonical per-conversation message state. Events from
// either delivery channel are merged idempotently: duplicate inserts
// collapse, delivery state only advances, tombstones stick, and the
// visible order is re-derived from createdAt on every read.
type Timeline struct {
	selfID string
	peerID string

	mu          sync.Mutex
	byID        map[string]*model.Message
	focused     bool
	pendingSeen map[string]struct{}
	seenTimer   *time.Timer
	notified    map[string]struct{}

	flushSeen SeenFlusher
	notify    NotifyFunc
	logger    *zap.Logger
}

func NewTimeline(selfID, peerID string, flushSeen SeenFlusher, notify NotifyFunc, logger *zap.Logger) *Timeline {
	return &Timeline{
		selfID:      selfID,
		peerID:      peerID,
		byID:        make(map[string]*model.Message),
		pendingSeen: make(map[string]struct{}),
		notified:    make(map[string]struct{}),
		flushSeen:   flushSeen,
		notify:      notify,
		logger:      logger,
	}
}

// Load seeds the timeline from an initial fetch. Existing entries merge
// with the loaded ones under the usual rules.
func (t *Timeline) Load(messages []model.Message) {
	for _, msg := range messages {
		t.Apply(MessageInserted{Message: msg})
	}
}

// SetFocused records whether the conversation is open and visible.
// Gaining focus is a qualifying event: unseen peer messages and any
// failed seen flush get (re)scheduled.
func (t *Timeline) SetFocused(focused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.focused = focused
	if !focused {
		return
	}

	for id, msg := range t.byID {
		if msg.SenderID == t.peerID && msg.DeliveryState < model.DeliveryStateSeen {
			t.pendingSeen[id] = struct{}{}
		}
	}
	if len(t.pendingSeen) > 0 {
		t.scheduleSeenLocked()
	}
}

// Apply merges one event into the timeline.
func (t *Timeline) Apply(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case MessageInserted:
		t.applyInsert(e)
	case MessageUpdated:
		t.applyUpdate(e.Message)
	case MessageDeleted:
		t.applyDelete(e.MessageID)
	case BulkSeenUpdate:
		t.applyBulkSeen(e.MessageIDs)
	}
}

func (t *Timeline) applyInsert(e MessageInserted) {
	msg := e.Message
	if _, known := t.byID[msg.ID]; known {
		// Second channel reporting the same message: no new row and,
		// just as important, no second notification or seen side effect.
		return
	}

	if msg.DeliveryState < model.DeliveryStateSent {
		msg.DeliveryState = model.DeliveryStateSent
	}
	if msg.DeletedForEveryone {
		msg.Content = model.TombstoneText
	}
	stored := msg
	t.byID[msg.ID] = &stored

	if msg.SenderID == t.peerID && !msg.DeletedForEveryone {
		if _, done := t.notified[msg.ID]; !done {
			t.notified[msg.ID] = struct{}{}
			if t.notify != nil {
				t.notify(msg, e.SenderName, e.SenderAvatar)
			}
		}
		if t.focused {
			t.pendingSeen[msg.ID] = struct{}{}
		}
	}

	// A new message is a qualifying event for retrying a failed flush.
	if len(t.pendingSeen) > 0 {
		t.scheduleSeenLocked()
	}
}

func (t *Timeline) applyUpdate(incoming model.Message) {
	existing, known := t.byID[incoming.ID]
	if !known {
		// Full documents from the change feed can arrive before the
		// fast-channel insert was ever seen; absorb them as silent
		// inserts. Partial updates for unknown ids have nothing to
		// merge into and are dropped.
		if !incoming.CreatedAt.IsZero() {
			t.byID[incoming.ID] = cloneNormalized(incoming)
		}
		return
	}

	if incoming.DeliveryState > existing.DeliveryState {
		existing.DeliveryState = incoming.DeliveryState
	}

	if incoming.DeletedForEveryone && !existing.DeletedForEveryone {
		existing.DeletedForEveryone = true
		existing.Content = model.TombstoneText
	}

	if len(incoming.Reactions) > 0 && !existing.DeletedForEveryone {
		if existing.Reactions == nil {
			existing.Reactions = make(map[string]string, len(incoming.Reactions))
		}
		for userID, emoji := range incoming.Reactions {
			existing.Reactions[userID] = emoji
		}
	}
}

func (t *Timeline) applyDelete(messageID string) {
	delete(t.byID, messageID)
	delete(t.pendingSeen, messageID)
}

func (t *Timeline) applyBulkSeen(messageIDs []string) {
	for _, id := range messageIDs {
		if msg, ok := t.byID[id]; ok {
			if msg.DeliveryState < model.DeliveryStateSeen {
				msg.DeliveryState = model.DeliveryStateSeen
			}
			delete(t.pendingSeen, id)
		}
	}
}

// Messages returns the visible list, sorted by createdAt with id as the
// tiebreaker. The order is re-derived on every call so it holds no
// matter what order events arrived in.
func (t *Timeline) Messages() []model.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.Message, 0, len(t.byID))
	for _, msg := range t.byID {
		out = append(out, *msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Stop cancels any scheduled seen flush.
func (t *Timeline) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seenTimer != nil {
		t.seenTimer.Stop()
		t.seenTimer = nil
	}
}

// scheduleSeenLocked arms the debounce timer. Callers hold t.mu.
func (t *Timeline) scheduleSeenLocked() {
	if t.seenTimer != nil || t.flushSeen == nil {
		return
	}
	t.seenTimer = time.AfterFunc(seenDebounce, t.flushPendingSeen)
}

func (t *Timeline) flushPendingSeen() {
	t.mu.Lock()
	t.seenTimer = nil
	if len(t.pendingSeen) == 0 {
		t.mu.Unlock()
		return
	}
	ids := make([]string, 0, len(t.pendingSeen))
	for id := range t.pendingSeen {
		ids = append(ids, id)
	}
	flush := t.flushSeen
	t.mu.Unlock()

	if err := flush(ids); err != nil {
		// Keep the ids pending; the next qualifying event retries.
		// Never fatal: the messages still display.
		t.logger.Warn("mark seen failed, will retry",
			zap.Int("count", len(ids)),
			zap.Error(err),
		)
		return
	}

	t.mu.Lock()
	for _, id := range ids {
		if msg, ok := t.byID[id]; ok && msg.DeliveryState < model.DeliveryStateSeen {
			msg.DeliveryState = model.DeliveryStateSeen
		}
		delete(t.pendingSeen, id)
	}
	t.mu.Unlock()
}

func cloneNormalized(msg model.Message) *model.Message {
	if msg.DeliveryState < model.DeliveryStateSent {
		msg.DeliveryState = model.DeliveryStateSent
	}
	if msg.DeletedForEveryone {
		msg.Content = model.TombstoneText
	}
	return &msg
}
