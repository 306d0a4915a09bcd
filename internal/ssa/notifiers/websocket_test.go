package notifiers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/daniacca/stochchem/internal/ssa"
	"github.com/gorilla/websocket"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, notifier *WebSocketNotifier, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for notifier.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, got %d", n, notifier.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewWebSocketNotifier(t *testing.T) {
	notifier := NewWebSocketNotifier("test-ws")
	defer notifier.Close()

	if notifier.ID() != "test-ws" {
		t.Errorf("Expected ID 'test-ws', got '%s'", notifier.ID())
	}
	if notifier.Clients() != 0 {
		t.Errorf("Expected no clients, got %d", notifier.Clients())
	}
}

func TestWebSocketNotifier_BroadcastsEvents(t *testing.T) {
	notifier := NewWebSocketNotifier("test")
	defer notifier.Close()
	srv := httptest.NewServer(notifier)
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()
	waitForClients(t, notifier, 1)

	notifier.ObserveEvent(ssa.Event{Seq: 1, Time: 0.25, Channel: 1, ChannelID: "degradation", State: ssa.State{4}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var ev ssa.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if ev.Seq != 1 || ev.ChannelID != "degradation" || ev.State[0] != 4 {
		t.Errorf("Unexpected event: %+v", ev)
	}
	if !notifier.Flush(time.Second) {
		t.Error("Expected flush to complete")
	}
}

func TestWebSocketNotifier_ClientDisconnect(t *testing.T) {
	notifier := NewWebSocketNotifier("test")
	defer notifier.Close()
	srv := httptest.NewServer(notifier)
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitForClients(t, notifier, 1)
	conn.Close()
	waitForClients(t, notifier, 0)
}

func TestWebSocketNotifier_IgnoresEventsAfterClose(t *testing.T) {
	notifier := NewWebSocketNotifier("test")
	notifier.Close()

	// a closed notifier ignores events without blocking
	done := make(chan struct{})
	go func() {
		for i := range 1000 {
			notifier.ObserveEvent(ssa.Event{Seq: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ObserveEvent blocked after Close")
	}
	if notifier.Dropped() != 0 {
		t.Errorf("Expected events after close to be ignored, not dropped, got %d", notifier.Dropped())
	}
}

func TestWebSocketNotifier_CloseIsIdempotent(t *testing.T) {
	notifier := NewWebSocketNotifier("test")
	if err := notifier.Close(); err != nil {
		t.Errorf("Expected no error on close, got %v", err)
	}
	if err := notifier.Close(); err != nil {
		t.Errorf("Expected no error on second close, got %v", err)
	}
}
