// Package serverlive pushes seat availability to browsers holding a
// section list open, so counts update without polling. Events are OK to
// be lost for a disconnected client, it will see fresh counts on reload.
package serverlive

import (
	"encoding/json"
	"net/http"
	"sync"

	"log/slog"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// SeatEvent is broadcast after every successful register or drop
type SeatEvent struct {
	SectionID  int64 `json:"section_id"`
	SeatsTaken int64 `json:"seats_taken"`
	Capacity   int32 `json:"capacity"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Feed struct {
	clients map[*client]struct{}
	mu      sync.Mutex
	logger  *slog.Logger
}

func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		clients: map[*client]struct{}{},
		logger:  logger,
	}
}

func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("ws failed to be established", "err", err)
		return
	}
	c := &client{
		conn: conn,
		send: make(chan []byte, 16),
	}
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	go c.writePump(f)
	go c.readPump(f)
}

// Broadcast sends the event to every connected client, dropping it for
// clients whose send buffer is full rather than blocking the registration
// request that triggered it
func (f *Feed) Broadcast(event SeatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("could not marshal seat event", "err", err)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

func (f *Feed) remove(c *client) {
	f.mu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
	f.mu.Unlock()
	c.conn.Close()
}

func (c *client) writePump(f *Feed) {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			f.remove(c)
			return
		}
	}
}

// clients never send anything meaningful, the read loop just detects
// disconnects
func (c *client) readPump(f *Feed) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			f.remove(c)
			return
		}
	}
}
