package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"flowcredits-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub pushes live balance and alert updates to connected tenant dashboards.
// Cross-instance fanout goes through a shared Redis channel.
type Hub struct {
	// Registered clients map: TenantID -> List of Clients (multi-session)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance communication
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
			h.clients[client.TenantID] = append(h.clients[client.TenantID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"tenant_id": client.TenantID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.TenantID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.TenantID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.TenantID]) == 0 {
					delete(h.clients, client.TenantID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"tenant_id": client.TenantID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes one event to every open session of a tenant.
func (h *Hub) Send(tenantID uuid.UUID, eventType string, payload interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})

	// Sends happen under the read lock; only Run closes client channels, under
	// the write lock. That ordering rules out sends on a closed channel.
	h.mu.RLock()
	var stalled []*Client
	for _, client := range h.clients[tenantID] {
		select {
		case client.Send <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.Warn("Hub", "Client Send buffer full, dropping session", map[string]interface{}{"tenant_id": tenantID})
		h.unregister <- client
	}

	// Publish to Redis so sessions on other instances get the update too.
	if h.rdb != nil {
		envelope := map[string]interface{}{
			"target_tenant_id": tenantID.String(),
			"message":          data,
		}
		jsonPayload, _ := json.Marshal(envelope)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to "cluster_events". When a message arrives,
	// deliver it only if the target tenant has local sessions.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetTenantID string          `json:"target_tenant_id"`
			Message        json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		tid, err := uuid.Parse(payload.TargetTenantID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		var stalled []*Client
		for _, client := range h.clients[tid] {
			select {
			case client.Send <- payload.Message:
			default:
				stalled = append(stalled, client)
			}
		}
		h.mu.RUnlock()

		for _, client := range stalled {
			h.unregister <- client
		}
	}
}
