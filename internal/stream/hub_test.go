package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// dialHub spins up a server that registers every connection on the hub
// with the given table filter and returns a connected client.
func dialHub(t *testing.T, hub *Hub, tables []string) *websocket.Conn {
	t.Helper()
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.Upgrader().Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, cleanup := hub.Register(conn, tables)
		defer cleanup()
		close(registered)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never registered")
	}
	return conn
}

func TestHubDeliversEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub, nil)

	if n := hub.SubscriberCount(); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}

	hub.Publish(NewChangeEvent("bookings", "INSERT", map[string]any{"id": 1}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev ChangeEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Table != "bookings" || ev.Action != "INSERT" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.ID == "" || ev.At == "" {
		t.Fatalf("event missing id or timestamp: %+v", ev)
	}
}

func TestHubTableFilter(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub, []string{"bookings"})

	// The filtered-out event must never arrive; the matching one must.
	hub.Publish(NewChangeEvent("training_sessions", "UPDATE", nil))
	hub.Publish(NewChangeEvent("bookings", "INSERT", nil))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev ChangeEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Table != "bookings" {
		t.Fatalf("filter leaked table %q", ev.Table)
	}
}
