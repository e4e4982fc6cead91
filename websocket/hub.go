package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types pushed to clients
const (
	MessageTypeConnected    = "connected"
	MessageTypeAuthResponse = "auth_response"
	MessageTypeNotification = "notification"
)

const writeTimeout = 10 * time.Second

// Message is the envelope written to a WebSocket connection
type Message struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userId,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// conn is the part of *websocket.Conn the hub writes through
type conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one connected socket. A user may hold several.
type Client struct {
	UserID string
	conn   conn
	mu     sync.Mutex
}

// write serialises writes; gorilla connections allow one concurrent writer
func (c *Client) write(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}

// Hub maintains the set of authenticated clients keyed by user id
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations until ctx is cancelled, then closes every connection
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.UserID]; ok {
				delete(set, client)
				if len(set) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
			client.conn.Close()
		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					client.conn.Close()
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// SendToUser writes payload to every connection of userID and reports
// whether at least one write succeeded
func (h *Hub) SendToUser(userID string, payload interface{}) bool {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for client := range h.clients[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	delivered := false
	msg := Message{Type: MessageTypeNotification, Message: "New notification", Data: payload, UserID: userID}
	for _, client := range targets {
		if err := client.write(msg); err == nil {
			delivered = true
		}
	}
	return delivered
}

// IsConnected reports whether userID has an open connection
func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

var _ conn = (*websocket.Conn)(nil)
