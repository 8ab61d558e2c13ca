package websocket

import (
	"path/filepath"
	"testing"
	"time"

	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "ws.log")))
	go hub.Run()
	return hub
}

func (h *Hub) connectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func TestSendDeliversToConnectedClient(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 8)}

	hub.register <- client
	require.Eventually(t, func() bool { return hub.connectionCount(userID) == 1 }, time.Second, 10*time.Millisecond)

	hub.Send(userID, dto.NotificationMessage{UserId: userID, Type: dto.NotificationTypeChatSaved})

	select {
	case data := <-client.Send:
		assert.Contains(t, string(data), dto.NotificationTypeChatSaved)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestSlowClientIsDroppedExactlyOnce(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()
	// No reader and no buffer, so every delivery attempt finds it full.
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte)}

	hub.register <- client
	require.Eventually(t, func() bool { return hub.connectionCount(userID) == 1 }, time.Second, 10*time.Millisecond)

	// Repeated sends against a stalled connection must unregister it once
	// and never close its channel a second time.
	hub.Send(userID, dto.NotificationMessage{UserId: userID, Type: dto.NotificationTypeChatSaved})
	hub.Send(userID, dto.NotificationMessage{UserId: userID, Type: dto.NotificationTypeChatDeleted})
	hub.Broadcast(dto.NotificationMessage{Type: dto.NotificationTypeSheetUpdated})

	require.Eventually(t, func() bool { return hub.connectionCount(userID) == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)
}

func TestBroadcastSkipsDisconnectedClient(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()
	stalled := &Client{Hub: hub, UserID: userID, Send: make(chan []byte)}
	healthy := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte, 8)}

	hub.register <- stalled
	hub.register <- healthy
	require.Eventually(t, func() bool {
		return hub.connectionCount(stalled.UserID) == 1 && hub.connectionCount(healthy.UserID) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(dto.NotificationMessage{Type: dto.NotificationTypeSheetUpdated})
	require.Eventually(t, func() bool { return hub.connectionCount(stalled.UserID) == 0 }, time.Second, 10*time.Millisecond)

	// The survivor keeps receiving after the stalled peer is gone.
	hub.Broadcast(dto.NotificationMessage{Type: dto.NotificationTypeSheetUpdated})
	received := 0
	for received < 2 {
		select {
		case <-healthy.Send:
			received++
		case <-time.After(time.Second):
			t.Fatalf("expected 2 frames, got %d", received)
		}
	}
}
