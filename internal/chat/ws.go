package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket serves the same event stream over a WebSocket. Each text
// message from the client is a chat Request; the response is the usual event
// sequence, one JSON event per frame. Requests on one connection run
// sequentially, each under its own timeout; the connection itself has no
// deadline.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request, perMessageTimeout time.Duration) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chat: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat: websocket read: %v", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			sendWSEvent(conn, Event{Type: EventError, Err: "invalid message format"})
			continue
		}

		if !h.serveWSRequest(r.Context(), conn, req, perMessageTimeout) {
			return
		}
	}
}

// serveWSRequest runs one pipeline invocation under a fresh per-message
// deadline and relays its events. It reports false when the connection is no
// longer usable.
func (h *Handler) serveWSRequest(parent context.Context, conn *websocket.Conn, req Request, timeout time.Duration) bool {
	ctx := parent
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, timeout)
		defer cancel()
	}

	events, err := h.pipeline.Ask(ctx, req)
	if err != nil {
		_, msg := statusForError(err)
		return sendWSEvent(conn, Event{Type: EventError, Err: msg})
	}

	for ev := range events {
		if !sendWSEvent(conn, ev) {
			return false
		}
	}
	return true
}

func sendWSEvent(conn *websocket.Conn, ev Event) bool {
	if err := conn.WriteJSON(ev); err != nil {
		log.Printf("chat: websocket write: %v", err)
		return false
	}
	return true
}
