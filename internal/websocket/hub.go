package notifyws

import (
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Hub fans notification payloads out to a user's connected clients. It
// is push-only: clients never send domain messages upstream.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	outbound   chan outboundMessage
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	send   chan []byte
}

type outboundMessage struct {
	userID  uuid.UUID
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan outboundMessage, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case message := <-h.outbound:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PushToUser queues a payload for every connected client of the user.
// Safe to call from any goroutine; drops the payload if the hub's
// queue is full rather than block a caller.
func (h *Hub) PushToUser(userID uuid.UUID, payload []byte) {
	select {
	case h.outbound <- outboundMessage{userID: userID, payload: payload}:
	default:
		log.Printf("notification hub queue full, dropping push for user %s", userID)
	}
}

func (h *Hub) deliver(message outboundMessage) {
	set, ok := h.clients[message.userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- message.payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, message.userID)
	}
}

// ReadPump drains the connection until the client disconnects. Inbound
// frames are ignored; the socket exists for pushes only.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
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
