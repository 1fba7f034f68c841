// Package stream fans table change events out to WebSocket subscribers.
// The feed is cosmetic: portals use it to refresh lists and counters,
// and nothing in the booking or agenda flow depends on delivery.
package stream

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChangeEvent describes one committed row change.
type ChangeEvent struct {
	ID     string `json:"id"`
	Table  string `json:"table"`
	Action string `json:"action"` // INSERT or UPDATE or DELETE
	Row    any    `json:"row,omitempty"`
	At     string `json:"at"`
}

// NewChangeEvent stamps an event with a fresh id and timestamp.
func NewChangeEvent(table, action string, row any) ChangeEvent {
	return ChangeEvent{
		ID:     uuid.NewString(),
		Table:  table,
		Action: action,
		Row:    row,
		At:     time.Now().UTC().Format(time.RFC3339),
	}
}

// Subscriber is one WebSocket connection with an optional table filter.
type Subscriber struct {
	tables map[string]bool // empty means all tables
	send   chan []byte
	conn   *websocket.Conn
}

// Hub tracks subscribers and broadcasts change events to them. A slow
// subscriber's buffer overflowing drops events for that subscriber only;
// the UI reloads on the next user action anyway.
type Hub struct {
	mu       sync.RWMutex
	subs     map[*Subscriber]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[*Subscriber]struct{}),
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Upgrader exposes the WebSocket upgrader for the events handler.
func (h *Hub) Upgrader() *websocket.Upgrader { return &h.upgrader }

// Register adds a connection filtered to the given tables (nil or empty
// subscribes to everything) and returns the subscriber plus a cleanup
// function for the handler to defer.
func (h *Hub) Register(conn *websocket.Conn, tables []string) (*Subscriber, func()) {
	s := &Subscriber{
		tables: make(map[string]bool, len(tables)),
		send:   make(chan []byte, 64),
		conn:   conn,
	}
	for _, t := range tables {
		if t != "" {
			s.tables[t] = true
		}
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go s.writeLoop()

	return s, func() { h.unregister(s) }
}

func (h *Hub) unregister(s *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s]
	if ok {
		delete(h.subs, s)
	}
	h.mu.Unlock()
	if ok {
		close(s.send)
	}
}

// Publish broadcasts an event to every subscriber interested in its
// table. Marshalling errors and full buffers are logged and ignored.
func (h *Hub) Publish(ev ChangeEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		h.log.Warn("change feed marshal failed", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if len(s.tables) > 0 && !s.tables[ev.Table] {
			continue
		}
		select {
		case s.send <- body:
		default:
			h.log.Debug("change feed subscriber buffer full, dropping event",
				zap.String("table", ev.Table))
		}
	}
}

// SubscriberCount reports how many connections are registered.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (s *Subscriber) writeLoop() {
	for body := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, body); err != nil {
			return
		}
	}
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
