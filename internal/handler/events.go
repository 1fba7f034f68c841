package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ademateus/field-service-portal/internal/stream"
)

// EventsHandler upgrades GET /v1/events to a WebSocket and streams
// change events. An optional ?tables=bookings,training_sessions query
// narrows the feed.
type EventsHandler struct {
	Hub *stream.Hub
}

func NewEventsHandler(hub *stream.Hub) *EventsHandler {
	if hub == nil {
		panic("nil hub passed to NewEventsHandler")
	}
	return &EventsHandler{Hub: hub}
}

// Stream handles the upgrade and blocks until the client disconnects.
func (h *EventsHandler) Stream(c echo.Context) error {
	conn, err := h.Hub.Upgrader().Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return nil
	}
	defer conn.Close()

	var tables []string
	if q := strings.TrimSpace(c.QueryParam("tables")); q != "" {
		for _, t := range strings.Split(q, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}

	_, cleanup := h.Hub.Register(conn, tables)
	defer cleanup()

	// Drain incoming frames so pings are answered and closes detected.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
