package statews

import (
	"context"
	"encoding/json"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/saeid-a/HealthQuestBack/internal/session"
	"go.uber.org/zap"
)

// Hub fans session events out to every live connection of a user.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	direct     chan directMessage
	done       chan struct{}
	logger     *zap.Logger
}

type delivery struct {
	userID string
	event  session.Event
}

// directMessage goes to a single client through the hub loop so it never
// races with the hub closing that client's channel.
type directMessage struct {
	client  *Client
	payload []byte
}

// Conn is the part of *websocket.Conn a client uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client struct {
	hub       *Hub
	conn      Conn
	userID    string
	sessionID string
	send      chan []byte
}

type screenSelector interface {
	SelectScreen(screen session.Screen) (session.State, error)
}

type incomingMessage struct {
	Type   string `json:"type"`
	Screen string `json:"screen"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 64),
		direct:     make(chan directMessage, 16),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func NewClient(hub *Hub, conn Conn, userID, sessionID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		userID:    userID,
		sessionID: sessionID,
		send:      make(chan []byte, 32),
	}
}

// Run serves the hub until ctx is cancelled. All open clients are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for userID, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, userID)
			}
			return
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			h.remove(client)
		case d := <-h.broadcast:
			h.deliver(d)
		case m := <-h.direct:
			if set, ok := h.clients[m.client.userID]; ok {
				if _, live := set[m.client]; live {
					select {
					case m.client.send <- m.payload:
					default:
					}
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish implements session.Publisher.
func (h *Hub) Publish(userID string, event session.Event) {
	select {
	case h.broadcast <- delivery{userID: userID, event: event}:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := set[client]; exists {
		delete(set, client)
		close(client.send)
	}
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) deliver(d delivery) {
	payload, err := json.Marshal(d.event)
	if err != nil {
		h.logger.Error("state hub encode event", zap.Error(err))
		return
	}

	set, ok := h.clients[d.userID]
	if !ok {
		return
	}
	for client := range set {
		if d.event.Type == session.EventSignedOut && client.sessionID != d.event.SessionID {
			continue
		}
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, d.userID)
	}
}

// ReadPump applies screen selections sent by the client until the connection
// closes.
func (c *Client) ReadPump(controller screenSelector) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming incomingMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.writeError("invalid message payload")
			continue
		}
		if incoming.Type != "select_screen" {
			c.writeError("unsupported message type")
			continue
		}
		if _, err := controller.SelectScreen(session.Screen(incoming.Screen)); err != nil {
			c.writeError(err.Error())
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) writeError(message string) {
	payload, err := json.Marshal(errorMessage{Type: "error", Message: message})
	if err != nil {
		return
	}
	select {
	case c.hub.direct <- directMessage{client: c, payload: payload}:
	case <-c.hub.done:
	}
}
