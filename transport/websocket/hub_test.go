package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.logger == nil {
		t.Error("Hub logger is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if got := hub.ClientCount("test-session"); got != 1 {
		t.Errorf("Expected 1 client in session, got %d", got)
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed")
	}

	// A second unregister must not close the channel twice
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(nil)
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	other := newTestClient(hub, "other-session")

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.registerClient(other)

	if got := hub.ClientCount(sessionID); got != 2 {
		t.Errorf("Expected 2 clients in session, got %d", got)
	}

	hub.unregisterClient(client1)

	if got := hub.ClientCount(sessionID); got != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", got)
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
	if got := hub.ClientCount("other-session"); got != 1 {
		t.Errorf("Unrelated session should be untouched, got %d clients", got)
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub(nil)
	sessionID := "broadcast-test"

	client := newTestClient(hub, sessionID)
	bystander := newTestClient(hub, "elsewhere")
	hub.registerClient(client)
	hub.registerClient(bystander)

	eng := engine.NewEngineWithDefaults()
	eng.Turn(engine.TurnRight)
	hub.BroadcastToSession(sessionID, eng.Status())

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %q, got %s", EventStateUpdate, message.Event)
		}
		if message.GameState == nil {
			t.Fatal("GameState missing from message")
		}
		if message.GameState.Facing != engine.East {
			t.Errorf("Expected facing East after a right turn from North, got %s", message.GameState.Facing)
		}
		if message.GameState.ShotsRemaining != eng.ShotsRemaining() {
			t.Errorf("Expected %d pictures remaining, got %d", eng.ShotsRemaining(), message.GameState.ShotsRemaining)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}

	select {
	case <-bystander.send:
		t.Error("Client of another session received the broadcast")
	default:
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "event-test")
	hub.registerClient(client)

	hub.BroadcastEvent("event-test", EventSessionDeleted, "test-data")

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventSessionDeleted {
			t.Errorf("Expected event %q, got %s", EventSessionDeleted, message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
		if message.GameState != nil {
			t.Error("Event messages should not carry a game state")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message received within timeout")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	client := &Client{hub: hub, sessionID: "slow", send: make(chan []byte, 1)}
	hub.registerClient(client)

	hub.BroadcastEvent("slow", "one", nil)
	hub.BroadcastEvent("slow", "two", nil)

	if got := hub.ClientCount("slow"); got != 0 {
		t.Errorf("Expected slow client to be dropped, %d remain", got)
	}
}

func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	t.Cleanup(server.Close)
	return server
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestWebSocketUpgrade(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)
	server := startServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 1 })

	conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 })
}

func TestWebSocketMessageReceive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)
	server := startServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("msg-test") == 1 })

	eng := engine.NewEngineWithDefaults()
	eng.TakePicture()
	hub.BroadcastToSession("msg-test", eng.Status())
	hub.BroadcastEvent("msg-test", "custom", map[string]int{"n": 2})

	conn.SetReadDeadline(time.Now().Add(time.Second))

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	if first.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", first.SessionID)
	}
	if first.GameState == nil {
		t.Fatal("GameState missing")
	}
	if first.GameState.ShotsTaken != 1 {
		t.Errorf("Expected 1 picture taken, got %d", first.GameState.ShotsTaken)
	}
	if first.GameState.Position != eng.Position() {
		t.Errorf("Expected position %v, got %v", eng.Position(), first.GameState.Position)
	}

	// Each message arrives in its own frame
	var second Message
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("Failed to read second message: %v", err)
	}
	if second.Event != "custom" {
		t.Errorf("Expected event 'custom', got %s", second.Event)
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	server := startServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=bye"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("bye") == 1 })

	cancel()
	<-stopped

	if got := hub.ClientCount("bye"); got != 0 {
		t.Errorf("Expected no clients after shutdown, got %d", got)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed after shutdown")
	}
}
