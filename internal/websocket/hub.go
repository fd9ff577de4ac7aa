package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSeatClaimed  MessageType = "seat_claimed"
	MessageTypeSeatReleased MessageType = "seat_released"
)

// Message is pushed to every client watching a flight whenever a seat
// changes holding state. AvailableSeats is the count after the change.
type Message struct {
	Type           MessageType `json:"type"`
	FlightID       string      `json:"flightId"`
	SeatNumber     string      `json:"seatNumber"`
	AvailableSeats int         `json:"availableSeats"`
	Timestamp      int64       `json:"timestamp"`
}

// Client represents a WebSocket client watching one flight
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	flightID uuid.UUID
}

// Hub manages WebSocket connections per flight
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	logger     *zap.Logger
}

// NewHub creates a new Hub. Call Run in a goroutine before serving
// connections.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.flightID] == nil {
				h.clients[client.flightID] = make(map[*Client]bool)
			}
			h.clients[client.flightID][client] = true
			h.logger.Debug("websocket client registered",
				zap.String("flight", client.flightID.String()),
				zap.Int("watchers", len(h.clients[client.flightID])))

		case client := <-h.unregister:
			if clients, ok := h.clients[client.flightID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.flightID)
					}
				}
			}

		case message := <-h.broadcast:
			flightID, err := uuid.Parse(message.FlightID)
			if err != nil {
				continue
			}
			data, err := json.Marshal(message)
			if err != nil {
				h.logger.Warn("failed to marshal websocket message", zap.Error(err))
				continue
			}
			for client := range h.clients[flightID] {
				select {
				case client.send <- data:
				default:
					delete(h.clients[flightID], client)
					close(client.send)
				}
			}
		}
	}
}

// SeatClaimed implements service.AvailabilityNotifier
func (h *Hub) SeatClaimed(flightID uuid.UUID, seatNumber string, available int) {
	h.push(MessageTypeSeatClaimed, flightID, seatNumber, available)
}

// SeatReleased implements service.AvailabilityNotifier
func (h *Hub) SeatReleased(flightID uuid.UUID, seatNumber string, available int) {
	h.push(MessageTypeSeatReleased, flightID, seatNumber, available)
}

func (h *Hub) push(t MessageType, flightID uuid.UUID, seatNumber string, available int) {
	msg := &Message{
		Type:           t,
		FlightID:       flightID.String(),
		SeatNumber:     seatNumber,
		AvailableSeats: available,
		Timestamp:      time.Now().UnixMilli(),
	}
	select {
	case h.broadcast <- msg:
	default:
		// Never block a booking on a slow feed.
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ServeWS upgrades the request and subscribes the client to availability
// updates for one flight.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, flightID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 16),
		flightID: flightID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// Clients only listen; drain until the connection drops.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
