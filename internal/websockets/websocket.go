package websockets

import (
	"time"

	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	PING_INTERVAL     = 30 * time.Second
	PONG_TIMEOUT      = 60 * time.Second
	WRITE_TIMEOUT     = 10 * time.Second
	MAX_MESSAGE_SIZE  = 64 * 1024
	SEND_CHANNEL_SIZE = 64

	SYSTEM_CHANNEL = "system"
)

type Message struct {
	ID        string             `json:"id"`
	Type      events.MessageType `json:"type"`
	Channel   string             `json:"channel,omitempty"`
	Action    string             `json:"action,omitempty"`
	UserID    int                `json:"userId,omitempty"`
	Data      map[string]any     `json:"data,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

type Client struct {
	ID         string
	UserID     int
	Connection *websocket.Conn
	Manager    *Manager
	Status     int
	send       chan Message
}

type accessTokenParser interface {
	ParseAccess(token string) (int, error)
}

// Manager keeps the connected clients and relays irrigation events to the
// authenticated ones.
type Manager struct {
	hub      *Hub
	db       database.DB
	users    repositories.UserRepository
	tokens   accessTokenParser
	log      logger.Logger
	eventBus *events.EventBus
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	tokens accessTokenParser,
	users repositories.UserRepository,
) (*Manager, error) {
	log := logger.New("websockets")

	manager := &Manager{
		hub: &Hub{
			broadcast:  make(chan Message, SEND_CHANNEL_SIZE),
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		db:       db,
		users:    users,
		tokens:   tokens,
		log:      log,
		eventBus: eventBus,
	}

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	if err := manager.subscribeToIrrigationEvents(); err != nil {
		return nil, err
	}

	return manager, nil
}

func newSystemMessage(messageType events.MessageType, action string, data map[string]any) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      messageType,
		Channel:   SYSTEM_CHANNEL,
		Action:    action,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	client := &Client{
		ID:         uuid.New().String(),
		Connection: c,
		Manager:    m,
		Status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	if err := client.sendAuthRequest(); err != nil {
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	m.hub.register <- client
	client.startAuthTimeout()

	go client.readPump()
	client.writePump()
}

func (m *Manager) BroadcastMessage(message Message) {
	log := m.log.Function("BroadcastMessage")

	select {
	case m.hub.broadcast <- message:
		log.Debug("Message queued for broadcast", "messageID", message.ID)
	default:
		log.Warn("Broadcast channel is full, dropping message", "messageID", message.ID)
	}
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			break
		}

		message.ID = uuid.New().String()
		message.Timestamp = time.Now()

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if message.Type == events.AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if c.Status != STATUS_AUTHENTICATED {
		c.handleUnauthenticatedMessage(message)
		return
	}

	switch message.Type {
	case events.PING:
		c.send <- newSystemMessage(events.PONG, "pong", nil)
	default:
		log.Warn("Unknown message type", "type", message.Type, "clientID", c.ID)
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) subscribeToIrrigationEvents() error {
	log := m.log.Function("subscribeToIrrigationEvents")

	err := m.eventBus.Subscribe(events.IRRIGATION_CHANNEL, func(event events.Event) error {
		log.Debug("Received irrigation event", "eventID", event.ID, "eventType", event.Type)
		m.BroadcastMessage(Message{
			ID:        event.ID,
			Type:      event.Type,
			Channel:   events.IRRIGATION_CHANNEL.String(),
			Action:    "broadcast",
			Data:      event.Data,
			Timestamp: event.Timestamp,
		})
		return nil
	})
	if err != nil {
		return log.Err("failed to subscribe to irrigation events", err)
	}

	return nil
}
