package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeDeviceStatus   MessageType = "device_status"
	MessageTypeBookingStarted MessageType = "booking_started"
	MessageTypeSessionEnded   MessageType = "session_ended"
	MessageTypeNotification   MessageType = "notification"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message represents a WebSocket message
type Message struct {
	Type         MessageType          `json:"type"`
	DeviceType   models.DeviceType    `json:"deviceType,omitempty"`
	Device       *models.Device       `json:"device,omitempty"`
	Booking      *models.Booking      `json:"booking,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
	Timestamp    int64                `json:"timestamp"`
}

// Client represents a WebSocket client connection. An empty topic receives every message.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	topic models.DeviceType
}

// Hub fans booking events out to clients grouped by device type
type Hub struct {
	clients    map[models.DeviceType]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	log        zerolog.Logger
	now        func() time.Time
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[models.DeviceType]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logger.With().Str("component", "websocket").Logger(),
		now: time.Now,
	}
}

// Run starts the hub's main loop and closes every client when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for topic, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, topic)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.topic] == nil {
				h.clients[client.topic] = make(map[*Client]bool)
			}
			h.clients[client.topic][client] = true
			total := len(h.clients[client.topic])
			h.mu.Unlock()
			h.log.Debug().Str("topic", topicName(client.topic)).Int("total", total).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.log.Error().Err(err).Msg("failed to marshal message")
				continue
			}

			h.mu.Lock()
			sent := 0
			for _, topic := range audience(message) {
				for client := range h.clients[topic] {
					select {
					case client.send <- data:
						sent++
					default:
						h.remove(client)
					}
				}
			}
			h.mu.Unlock()
			h.log.Debug().Str("type", string(message.Type)).Int("clients", sent).Msg("broadcast")
		}
	}
}

// remove drops a client; callers hold h.mu
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.topic)
	}
}

// audience lists the topics a message is delivered to
func audience(m *Message) []models.DeviceType {
	if m.DeviceType == "" {
		return []models.DeviceType{"", models.DeviceTypeDesktop, models.DeviceTypeLaptop}
	}
	return []models.DeviceType{"", m.DeviceType}
}

func topicName(t models.DeviceType) string {
	if t == "" {
		return "all"
	}
	return string(t)
}

// HandleWebSocket upgrades the request and subscribes the connection to ?type=
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	topic := models.DeviceType(r.URL.Query().Get("type"))
	if topic != "" && !topic.Valid() {
		http.Error(w, "invalid device type", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), topic: topic}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only drains control frames; clients never send data
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Msg("client read error")
			}
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
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func (h *Hub) publish(msg *Message) {
	msg.Timestamp = h.now().UnixMilli()
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("type", string(msg.Type)).Msg("broadcast queue full, dropping message")
	}
}

// PublishDeviceStatus announces a device status change
func (h *Hub) PublishDeviceStatus(device models.Device) {
	h.publish(&Message{Type: MessageTypeDeviceStatus, DeviceType: device.Type, Device: &device})
}

// PublishBookingStarted announces a new active booking
func (h *Hub) PublishBookingStarted(booking models.Booking) {
	h.publish(&Message{Type: MessageTypeBookingStarted, Booking: &booking})
}

// PublishSessionEnded announces a completed booking
func (h *Hub) PublishSessionEnded(booking models.Booking) {
	h.publish(&Message{Type: MessageTypeSessionEnded, Booking: &booking})
}

func (h *Hub) PublishNotification(n models.Notification) {
	h.publish(&Message{Type: MessageTypeNotification, Notification: &n})
}

// ClientCount returns the number of clients subscribed to a topic
func (h *Hub) ClientCount(topic models.DeviceType) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
