package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/grovewalk/game/engine"
	"github.com/wricardo/grovewalk/game/service"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

// startServer runs the hub behind an httptest server and returns a ws URL
// prefix ending in "?session="
func startServer(t *testing.T, hub *Hub) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return "ws" + strings.TrimPrefix(server.URL, "http") + "?session="
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(sessionID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients in %s, got %d", want, sessionID, hub.ClientCount(sessionID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// firstMessage reads one frame and decodes its first newline-separated message
func firstMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	line, _, _ := bytes.Cut(data, []byte{'\n'})

	var message Message
	if err := json.Unmarshal(line, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if cap(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected broadcast buffer %d, got %d", broadcastBuffer, cap(hub.broadcast))
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub register channels are nil")
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
	if _, open := <-client1.send; open {
		t.Error("Expected client1 send channel to be closed")
	}

	// Unregistering twice must not close the channel again
	hub.unregisterClient(client1)

	hub.unregisterClient(client2)
	if _, exists := hub.sessions[sessionID]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
}

func TestHubBroadcastSnapshot(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.BroadcastSnapshot("broadcast-test", &engine.Snapshot{
		ConfigName: "classic",
		Tick:       42,
		Player:     engine.PlayerView{Tile: engine.Position{X: 5, Y: 3}},
	})

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventSnapshot {
			t.Errorf("Expected event %q, got %q", EventSnapshot, message.Event)
		}
		if message.Snapshot == nil || message.Snapshot.Tick != 42 {
			t.Fatalf("Snapshot not correctly transmitted: %+v", message.Snapshot)
		}
		if message.Snapshot.Player.Tile != (engine.Position{X: 5, Y: 3}) {
			t.Errorf("Expected player tile (5,3), got %v", message.Snapshot.Player.Tile)
		}
	default:
		t.Fatal("No message delivered")
	}

	if len(other.send) != 0 {
		t.Error("Other sessions should not receive the snapshot")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte, 1)}
	hub.registerClient(slow)

	hub.BroadcastSnapshot("slow", &engine.Snapshot{Tick: 1})
	hub.BroadcastSnapshot("slow", &engine.Snapshot{Tick: 2})

	if hub.ClientCount("slow") != 0 {
		t.Error("Expected slow client to be dropped")
	}
}

func TestHubBroadcastEvents(t *testing.T) {
	hub := NewHub()

	events := []service.GameEvent{
		{Type: string(engine.EventChop), Message: "Chopped the tree at (4,5)", Health: 66},
		{Type: string(engine.EventTreeFalling), Message: "The tree at (4,5) is falling"},
	}
	hub.BroadcastEvents("event-test", events)

	for i, want := range events {
		select {
		case message := <-hub.broadcast:
			if message.SessionID != "event-test" {
				t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
			}
			if message.Event != want.Type {
				t.Errorf("Event %d: expected %q, got %q", i, want.Type, message.Event)
			}
			got, ok := message.Data.(service.GameEvent)
			if !ok || got.Message != want.Message {
				t.Errorf("Event %d: unexpected data %v", i, message.Data)
			}
		default:
			t.Fatalf("Event %d was not queued", i)
		}
	}
}

func TestHubBroadcastEventQueueFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.BroadcastEvent("full", "tick", i)
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected queue to hold %d messages, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	wsURL := startServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"ws-test", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitForClients(t, hub, "ws-test", 1)

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	wsURL := startServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"msg-test", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "msg-test", 1)

	t.Run("snapshot", func(t *testing.T) {
		hub.BroadcastSnapshot("msg-test", &engine.Snapshot{
			GridSize: 20,
			Player:   engine.PlayerView{Tile: engine.Position{X: 10, Y: 15}, Mode: engine.ModeIdle},
		})

		message := firstMessage(t, conn)
		if message.SessionID != "msg-test" {
			t.Errorf("Expected sessionID 'msg-test', got %s", message.SessionID)
		}
		if message.Snapshot == nil || message.Snapshot.Player.Tile != (engine.Position{X: 10, Y: 15}) {
			t.Error("Snapshot position not correctly received")
		}
	})

	t.Run("event", func(t *testing.T) {
		hub.BroadcastEvent("msg-test", "tree_removed", map[string]int{"x": 4, "y": 5})

		message := firstMessage(t, conn)
		if message.Event != "tree_removed" {
			t.Errorf("Expected event 'tree_removed', got %q", message.Event)
		}
		data, ok := message.Data.(map[string]interface{})
		if !ok || data["x"] != float64(4) {
			t.Errorf("Unexpected event data %v", message.Data)
		}
	})
}

func TestWebSocketCommands(t *testing.T) {
	hub := NewHub()
	received := make(chan Command, 2)
	hub.OnCommand = func(sessionID string, cmd Command) {
		if sessionID != "cmd-test" {
			t.Errorf("Expected session 'cmd-test', got %s", sessionID)
		}
		received <- cmd
	}
	wsURL := startServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"cmd-test", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	messages := []string{
		`not json`,
		`{"type":"intent","intent":{"left":true}}`,
		`{"type":"click","x":3,"y":7}`,
	}
	for _, m := range messages {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
			t.Fatalf("Failed to write message: %v", err)
		}
	}

	want := []Command{
		{Type: "intent", Intent: &engine.Intent{Left: true}},
		{Type: "click", X: 3, Y: 7},
	}
	for i, w := range want {
		select {
		case got := <-received:
			if got.Type != w.Type || got.X != w.X || got.Y != w.Y {
				t.Errorf("Command %d: expected %+v, got %+v", i, w, got)
			}
			if w.Intent != nil && (got.Intent == nil || *got.Intent != *w.Intent) {
				t.Errorf("Command %d: expected intent %+v, got %+v", i, *w.Intent, got.Intent)
			}
		case <-time.After(time.Second):
			t.Fatalf("Command %d not received", i)
		}
	}
}
