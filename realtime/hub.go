// Package realtime pushes match changes to websocket sessions watching a
// division.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/league-standings/models"
	"github.com/Dosada05/league-standings/notifications"
)

const (
	MessageMatchUpdated = "MATCH_UPDATED"
	MessageOpenMatch    = "OPEN_MATCH"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// RoomID names the room for one division of one tournament.
func RoomID(tournamentID, divisionID int) string {
	return fmt.Sprintf("tournament_%d_division_%d", tournamentID, divisionID)
}

// Client is one websocket session. Each session owns its own open match
// filter, so a pending match is announced to it at most once.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	room   string
	filter *notifications.Filter

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, tournamentID, divisionID, filterCapacity int) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		room:   RoomID(tournamentID, divisionID),
		filter: notifications.NewFilter(filterCapacity),
	}
}

func (c *Client) Room() string { return c.room }

// deliver queues msg without blocking; a full buffer drops the message.
func (c *Client) deliver(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	logger *slog.Logger
	done   chan struct{}
	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger,
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Run serves registrations until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for room, clients := range h.rooms {
				for c := range clients {
					c.close()
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		case c := <-h.Register:
			h.add(c)
		case c := <-h.Unregister:
			h.remove(c)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[c.room]; !ok {
		h.rooms[c.room] = make(map[*Client]bool)
	}
	h.rooms[c.room][c] = true
	h.logger.Debug("client registered", slog.String("room", c.room), slog.Int("clients", len(h.rooms[c.room])))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[c.room]
	if !ok || !clients[c] {
		return
	}
	c.close()
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
	h.logger.Debug("client unregistered", slog.String("room", c.room), slog.Int("clients", len(clients)))
}

// Join hands c to the hub. It returns false without blocking once the hub
// has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// RoomSize returns the number of sessions in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// HandleEvent implements notifications.EventHandler. Every session in the
// division gets MATCH_UPDATED; sessions that have not yet seen the match as
// open also get OPEN_MATCH.
func (h *Hub) HandleEvent(ctx context.Context, ev models.MatchChangedEvent) {
	room := RoomID(ev.TournamentID, ev.DivisionID)

	updated, err := json.Marshal(Message{Type: MessageMatchUpdated, Payload: ev, RoomID: room})
	if err != nil {
		h.logger.Error("failed to marshal match update", slog.Int("match_id", ev.MatchID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if !c.deliver(updated) {
			h.logger.Warn("dropped match update for slow client", slog.String("room", room))
		}
		n, ok := c.filter.Observe(ev)
		if !ok {
			continue
		}
		open, err := json.Marshal(Message{Type: MessageOpenMatch, Payload: n, RoomID: room})
		if err != nil {
			h.logger.Error("failed to marshal open match", slog.Int("match_id", ev.MatchID), slog.Any("error", err))
			continue
		}
		if !c.deliver(open) {
			c.filter.Forget(n.MatchID)
			h.logger.Warn("open match notification dropped for slow client",
				slog.Int("match_id", n.MatchID), slog.String("room", room))
		}
	}
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket closed unexpectedly", slog.String("room", c.room), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Warn("websocket write failed", slog.String("room", c.room), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
