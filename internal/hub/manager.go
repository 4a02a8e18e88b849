package hub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"net/http"
	"sync"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/event"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	shardCount = 64 // tune: 16/64/128 depending on load
)

type inboundMessage struct {
	event  event.WsEvent
	client *Client
}

type clientBucket struct {
	sync.RWMutex
	rooms map[string]map[string]*Client
}

// Hub is the fast broadcast channel. Clients join the room for their
// conversation key; events published to a room reach every connected
// client plus any in-process taps. Delivery is at-least-once and carries
// no ordering guarantee relative to the durable store.
type Hub struct {
	shards     [shardCount]*clientBucket
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage

	onlineUsers   map[string]*Client
	onlineUsersMu sync.RWMutex

	taps   map[string]map[int64]func(event.WsEvent)
	tapsMu sync.RWMutex
	nextID int64

	messageRepo repo.MessageRepository
	logger      *zap.Logger

	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewHub(messageRepo repo.MessageRepository, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		register:    make(chan *Client, 1024),
		unregister:  make(chan *Client, 1024),
		inbound:     make(chan inboundMessage, 4096), // buffer for burst handling
		onlineUsers: make(map[string]*Client),
		taps:        make(map[string]map[int64]func(event.WsEvent)),
		messageRepo: messageRepo,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}

	for i := 0; i < shardCount; i++ {
		h.shards[i] = &clientBucket{
			rooms: make(map[string]map[string]*Client),
		}
	}

	// run manager loop
	go h.run()

	// start worker loop
	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}
					h.handleEvent(in.event, in.client)
				}
			}
		}()
	}

	return h
}

// Publish delivers an event to every client in the conversation room and
// to all in-process taps. Called both for relayed client events and for
// events injected after REST writes.
func (h *Hub) Publish(conversationKey string, ev event.WsEvent) {
	ev.ConversationKey = conversationKey

	sh := getShard(conversationKey)
	b := h.shards[sh]

	// collect clients while holding RLock
	b.RLock()
	room := b.rooms[conversationKey]
	clients := make([]*Client, 0, len(room))
	for _, c := range room {
		clients = append(clients, c)
	}
	b.RUnlock()

	for _, c := range clients {
		select {
		case c.egress <- ev:
			// enqueued
		case <-time.After(sendTimeout):
			h.logger.Warn("egress full",
				zap.String("client_id", c.ID),
				zap.String("conversation", conversationKey),
			)
			if kickOnFull {
				h.unregister <- c
			}
		}
	}

	h.tapsMu.RLock()
	for _, fn := range h.taps[conversationKey] {
		fn(ev)
	}
	h.tapsMu.RUnlock()
}

// Listen registers an in-process tap on a conversation room. Taps see
// the same events as connected websocket clients. The returned function
// removes the tap and may be called more than once.
func (h *Hub) Listen(conversationKey string, fn func(event.WsEvent)) func() {
	h.tapsMu.Lock()
	id := h.nextID
	h.nextID++
	if h.taps[conversationKey] == nil {
		h.taps[conversationKey] = make(map[int64]func(event.WsEvent))
	}
	h.taps[conversationKey][id] = fn
	h.tapsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.tapsMu.Lock()
			delete(h.taps[conversationKey], id)
			if len(h.taps[conversationKey]) == 0 {
				delete(h.taps, conversationKey)
			}
			h.tapsMu.Unlock()
		})
	}
}

// Connected reports whether the hub is accepting traffic. The in-process
// hub is always connected while running; the method exists so consumers
// can treat the fast channel as optional.
func (h *Hub) Connected() bool {
	return h.ctx.Err() == nil
}

// SendToUser delivers an event to one user's active connection, if any.
func (h *Hub) SendToUser(userID string, ev event.WsEvent) bool {
	h.onlineUsersMu.RLock()
	client, online := h.onlineUsers[userID]
	h.onlineUsersMu.RUnlock()

	if !online {
		return false
	}
	return client.SafeSend(ev, sendTimeout)
}

// IsOnline reports whether the user has an active websocket connection.
func (h *Hub) IsOnline(userID string) bool {
	h.onlineUsersMu.RLock()
	_, online := h.onlineUsers[userID]
	h.onlineUsersMu.RUnlock()
	return online
}

func getShard(conversationKey string) uint32 {
	if conversationKey == "" {
		return 0
	}

	h := sha1.Sum([]byte(conversationKey))
	return binary.BigEndian.Uint32(h[:4]) % shardCount
}

func (h *Hub) addClient(c *Client) {
	sh := getShard(c.ConversationKey)
	b := h.shards[sh]
	b.Lock()
	room, ok := b.rooms[c.ConversationKey]
	if !ok {
		room = make(map[string]*Client)
		b.rooms[c.ConversationKey] = room
	}
	room[c.ID] = c
	b.Unlock()

	h.onlineUsersMu.Lock()
	h.onlineUsers[c.userID] = c
	h.onlineUsersMu.Unlock()

	connectedClients.Inc()
	h.logger.Debug("client registered",
		zap.String("client_id", c.ID),
		zap.String("user_id", c.userID),
		zap.String("conversation", c.ConversationKey),
	)
}

func (h *Hub) removeClient(c *Client) {
	sh := getShard(c.ConversationKey)
	b := h.shards[sh]
	b.Lock()
	if room, ok := b.rooms[c.ConversationKey]; ok {
		if _, exists := room[c.ID]; exists {
			delete(room, c.ID)
			connectedClients.Dec()
		}
		if len(room) == 0 {
			delete(b.rooms, c.ConversationKey)
		}
	}
	b.Unlock()

	h.onlineUsersMu.Lock()
	if current, ok := h.onlineUsers[c.userID]; ok && current == c {
		delete(h.onlineUsers, c.userID)
	}
	h.onlineUsersMu.Unlock()

	c.Close()
	h.logger.Debug("client removed",
		zap.String("client_id", c.ID),
		zap.String("conversation", c.ConversationKey),
	)
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()

		for _, shard := range h.shards {
			shard.RLock()
			for _, room := range shard.rooms {
				for _, client := range room {
					client.Close()
				}
			}
			shard.RUnlock()
		}

		close(h.inbound)
		h.wg.Wait()
	})
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades the connection and registers the client in the room
// for the conversation between userID and peerID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, allowedOrigins []string, userID, peerID string) {
	websocketUpgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	}

	conn, err := websocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	RegisterClient(userID, peerID, conn, h)
}
