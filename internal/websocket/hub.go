package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// fanoutChannel is the Redis channel instances use to reach clients
// connected to a different instance.
const fanoutChannel = "dpr_ws_events"

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fanout. Nil when running on the
	// in-memory backend; the hub then only serves local connections.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Last connection closed", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

func envelope(notification dto.NotificationMessage) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	return data
}

// Broadcast sends a notification to ALL connected clients.
func (h *Hub) Broadcast(notification dto.NotificationMessage) {
	data := envelope(notification)

	h.mu.RLock()
	var dropped []*Client
	for _, clients := range h.clients {
		dropped = append(dropped, h.deliver(clients, data)...)
	}
	h.mu.RUnlock()
	h.drop(dropped)

	h.publishFanout("*", data)
}

// Send delivers a notification to every connection of one user, locally and
// through Redis for connections held by other instances.
func (h *Hub) Send(userID uuid.UUID, notification dto.NotificationMessage) {
	data := envelope(notification)

	h.mu.RLock()
	dropped := h.deliver(h.clients[userID], data)
	h.mu.RUnlock()
	h.drop(dropped)

	h.publishFanout(userID.String(), data)
}

// deliver pushes data to each client and returns the ones whose buffer was
// full. Callers must hold at least the read lock: Send channels are closed
// only under the write lock in Run's unregister path, so a send here can
// never hit a closed channel.
func (h *Hub) deliver(clients []*Client, data []byte) []*Client {
	var dropped []*Client
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			dropped = append(dropped, client)
		}
	}
	return dropped
}

// drop hands slow clients to the unregister loop, which owns removing them
// and closing their Send channel. Must be called without the lock held.
func (h *Hub) drop(dropped []*Client) {
	for _, client := range dropped {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
		h.unregister <- client
	}
}

func (h *Hub) publishFanout(target string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"target_user_id": target,
		"message":        data,
	})
	h.rdb.Publish(context.Background(), fanoutChannel, payload)
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, fanoutChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Unreadable fanout payload", map[string]interface{}{"error": err.Error()})
			continue
		}

		if payload.TargetUserID == "*" {
			h.mu.RLock()
			var dropped []*Client
			for _, clients := range h.clients {
				dropped = append(dropped, h.deliver(clients, payload.Message)...)
			}
			h.mu.RUnlock()
			h.drop(dropped)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		dropped := h.deliver(h.clients[uid], payload.Message)
		h.mu.RUnlock()
		h.drop(dropped)
	}
}
