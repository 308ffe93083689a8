package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/rfitrainer/internal/events"
)

const socketWriteTimeout = 5 * time.Second

// EventsSocketHandler pushes bus events to websocket clients. Clients do not
// send anything; inbound messages are discarded.
type EventsSocketHandler struct {
	eventBus *events.Bus
	log      zerolog.Logger
}

// NewEventsSocketHandler creates a new websocket events handler.
func NewEventsSocketHandler(eventBus *events.Bus, log zerolog.Logger) *EventsSocketHandler {
	return &EventsSocketHandler{
		eventBus: eventBus,
		log:      log.With().Str("component", "events_socket").Logger(),
	}
}

// ServeHTTP handles GET /api/trainer/ws requests.
func (h *EventsSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // same CORS policy as the REST API
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	eventChan, unsubscribe := subscribe(h.eventBus, parseTypesFilter(r.URL.Query().Get("types")), h.log)
	defer unsubscribe()

	// CloseRead discards inbound frames and cancels ctx when the peer goes away
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Msg("Client connected to websocket feed")
	if err := h.write(ctx, conn, map[string]interface{}{"type": "connected"}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from websocket feed")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-eventChan:
			if err := h.write(ctx, conn, streamPayload(event)); err != nil {
				return
			}
		}
	}
}

func (h *EventsSocketHandler) write(ctx context.Context, conn *websocket.Conn, payload interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
	defer cancel()

	err := wsjson.Write(writeCtx, conn, payload)
	if err != nil && !errors.Is(err, context.Canceled) {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			h.log.Warn().Err(err).Msg("Failed to write websocket message")
		}
	}
	return err
}
