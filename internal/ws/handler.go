package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Client represents a connected WebSocket client
type Client struct {
	conn     *websocket.Conn
	playerID int
	token    string
	binary   bool // msgpack frames instead of JSON text
	send     chan []byte
	closed   bool // send was closed; guarded by GameHub.mu
}

// Hub maintains the set of active clients, grouped by session token.
type Hub struct {
	clients    map[*Client]struct{}
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// GameHub is the single hub for all sessions.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go GameHub.run()
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			if _, exists := h.rooms[client.token]; !exists {
				h.rooms[client.token] = make(map[*Client]struct{})
			}
			h.rooms[client.token][client] = struct{}{}
			size := len(h.rooms[client.token])
			h.mu.Unlock()
			log.Printf("[WS] player %d connected to session %s (room_size=%d)", client.playerID, shortToken(client.token), size)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		}
	}
}

// remove drops client and closes its send channel. Caller holds h.mu.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if room, exists := h.rooms[client.token]; exists {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.token)
		}
	}
	client.closed = true
	close(client.send)
	log.Printf("[WS] player %d disconnected from session %s", client.playerID, shortToken(client.token))
}

// RoomSize returns the number of clients watching a session.
func (h *Hub) RoomSize(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[token])
}

// BroadcastToSession sends a message to every client of a session.
func (h *Hub) BroadcastToSession(token string, message OutboundMessage) {
	enc := newEncoder(message)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[token] {
		data, err := enc.bytes(client.binary)
		if err != nil {
			log.Printf("[WS] Error encoding %s message: %v", message.Type, err)
			return
		}
		select {
		case client.send <- data:
		default:
			// Client's buffer is full
			log.Debugf("[WS] send buffer full for player %d, dropping %s", client.playerID, message.Type)
		}
	}
}

// SendToPlayer sends a message to every connection of a player.
func (h *Hub) SendToPlayer(playerID int, message OutboundMessage) int {
	enc := newEncoder(message)

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.clients {
		if client.playerID != playerID {
			continue
		}
		data, err := enc.bytes(client.binary)
		if err != nil {
			log.Printf("[WS] Error encoding %s message: %v", message.Type, err)
			return sent
		}
		select {
		case client.send <- data:
			sent++
		default:
			log.Printf("[WS] SendToPlayer dropped message for player %d (buffer full)", playerID)
		}
	}
	return sent
}

// CloseSession sends a final message and disconnects every client of a session.
func (h *Hub) CloseSession(token string, final OutboundMessage) {
	h.BroadcastToSession(token, final)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.rooms[token] {
		h.remove(client)
	}
}

// encoder lazily encodes one message at most once per format.
type encoder struct {
	msg        OutboundMessage
	json, pack []byte
}

func newEncoder(msg OutboundMessage) *encoder {
	return &encoder{msg: msg}
}

func (e *encoder) bytes(binary bool) ([]byte, error) {
	var err error
	if binary {
		if e.pack == nil {
			e.pack, err = msgpack.Marshal(e.msg)
		}
		return e.pack, err
	}
	if e.json == nil {
		e.json, err = json.Marshal(e.msg)
	}
	return e.json, err
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.binary {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed: the session ended or the reader went away.
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(frameType, message); err != nil {
				log.Printf("[WS] write error for player %d: %v", c.playerID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for player %d: %v", c.playerID, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendMessage(OutboundMessage{Type: TypeError, Data: ErrorData{Message: message}})
}

func (c *Client) sendMessage(msg OutboundMessage) {
	data, err := newEncoder(msg).bytes(c.binary)
	if err != nil {
		log.Printf("[WS] Error encoding %s message: %v", msg.Type, err)
		return
	}
	GameHub.mu.RLock()
	defer GameHub.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Debugf("[WS] send buffer full for player %d, dropping %s", c.playerID, msg.Type)
	}
}

func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
