package websocket

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"flowcredits-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "hub.log"))
	return NewHub(nil, log)
}

// drained reports whether the client's channel has been closed by the hub.
func drained(c *Client) bool {
	for {
		select {
		case _, ok := <-c.Send:
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}

func TestSendToStalledSessionDropsItWithoutPanic(t *testing.T) {
	hub := testHub(t)
	tenantId := uuid.New()
	client := &Client{Hub: hub, TenantID: tenantId, Send: make(chan []byte, 1)}
	hub.clients[tenantId] = []*Client{client}
	go hub.Run()

	// Fill the session buffer so the next push cannot be delivered.
	client.Send <- []byte("backlog")

	hub.Send(tenantId, "balance_update", map[string]int64{"available_credits": 10})
	hub.Send(tenantId, "balance_update", map[string]int64{"available_credits": 9})

	require.Eventually(t, func() bool { return drained(client) }, time.Second, 10*time.Millisecond)

	// A disconnect after the drop (readPump exiting) must stay a no-op.
	hub.unregister <- client
	hub.Send(tenantId, "balance_update", map[string]int64{"available_credits": 8})

	hub.mu.RLock()
	_, stillRegistered := hub.clients[tenantId]
	hub.mu.RUnlock()
	assert.False(t, stillRegistered)
}

func TestConcurrentSendsToStalledSession(t *testing.T) {
	hub := testHub(t)
	tenantId := uuid.New()
	client := &Client{Hub: hub, TenantID: tenantId, Send: make(chan []byte, 1)}
	hub.clients[tenantId] = []*Client{client}
	go hub.Run()

	client.Send <- []byte("backlog")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Send(tenantId, "balance_update", map[string]int64{"available_credits": 1})
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return drained(client) }, time.Second, 10*time.Millisecond)
}

func TestSendStillReachesHealthySessions(t *testing.T) {
	hub := testHub(t)
	tenantId := uuid.New()
	stalled := &Client{Hub: hub, TenantID: tenantId, Send: make(chan []byte, 1)}
	healthy := &Client{Hub: hub, TenantID: tenantId, Send: make(chan []byte, 8)}
	hub.clients[tenantId] = []*Client{stalled, healthy}
	go hub.Run()

	stalled.Send <- []byte("backlog")
	hub.Send(tenantId, "balance_update", map[string]int64{"available_credits": 42})

	select {
	case msg := <-healthy.Send:
		assert.Contains(t, string(msg), "available_credits")
	case <-time.After(time.Second):
		t.Fatal("healthy session did not receive the update")
	}
}
