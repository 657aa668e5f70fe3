package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/league-standings/realtime"
)

type WebSocketHandler struct {
	hub            *realtime.Hub
	upgrader       websocket.Upgrader
	filterCapacity int
	logger         *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; an empty list
// or "*" accepts any origin.
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string, filterCapacity int, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		filterCapacity: filterCapacity,
		logger:         logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs subscribes the connection to the division room at
// /ws/tournaments/{tournamentID}/divisions/{divisionID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, divisionID, err := scopeFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed",
			slog.Int("tournament_id", tournamentID),
			slog.Int("division_id", divisionID),
			slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, tournamentID, divisionID, h.filterCapacity)
	if !h.hub.Join(client) {
		h.logger.Warn("websocket rejected, hub stopped", slog.String("room", client.Room()))
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client connected", slog.String("room", client.Room()))
}
