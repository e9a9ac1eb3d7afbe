package websockets

import (
	"sync"
	"time"
)

const (
	STATUS_UNAUTHENTICATED = iota
	STATUS_AUTHENTICATED
	STATUS_CLOSED
)

const SLOW_CLIENT_TIMEOUT = 5 * time.Second

type Hub struct {
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			m.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message, m)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	m.hub.clients[client.ID] = client
	m.log.Function("registerClient").Info("Client registered", "clientID", client.ID)
}

// unregisterClient is idempotent; the send channel is closed only once.
func (m *Manager) unregisterClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if _, ok := m.hub.clients[client.ID]; !ok {
		return
	}

	delete(m.hub.clients, client.ID)
	client.Status = STATUS_CLOSED
	close(client.send)

	m.log.Function("unregisterClient").Info(
		"Client unregistered",
		"clientID", client.ID,
		"userID", client.UserID,
	)
}

func (m *Manager) clientStatus(client *Client) int {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()
	return client.Status
}

func (m *Manager) authenticateClient(client *Client, userID int) bool {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if client.Status != STATUS_UNAUTHENTICATED {
		return false
	}
	client.Status = STATUS_AUTHENTICATED
	client.UserID = userID
	return true
}

func (h *Hub) broadcastMessage(message Message, m *Manager) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if client.Status != STATUS_AUTHENTICATED {
			continue
		}
		if m.deliver(client, message) {
			sent++
		}
	}

	m.log.Function("broadcastMessage").Debug(
		"Broadcast complete",
		"messageID", message.ID,
		"sentTo", sent,
		"totalClients", len(h.clients),
	)
}

// deliver must be called with the hub lock held. A client whose buffer is
// full gets a grace period before it is disconnected.
func (m *Manager) deliver(client *Client, message Message) bool {
	select {
	case client.send <- message:
		return true
	default:
	}

	log := m.log.Function("deliver")
	go func(c *Client, msg Message) {
		timer := time.NewTimer(SLOW_CLIENT_TIMEOUT)
		defer timer.Stop()

		m.hub.mutex.RLock()
		open := c.Status != STATUS_CLOSED
		m.hub.mutex.RUnlock()
		if !open {
			return
		}

		select {
		case c.send <- msg:
		case <-timer.C:
			log.Warn("Client too slow, disconnecting", "clientID", c.ID)
			m.hub.unregister <- c
		}
	}(client, message)

	return false
}

func (m *Manager) SendMessageToUser(userID int, message Message) int {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	sent := 0
	for _, client := range m.hub.clients {
		if client.Status == STATUS_AUTHENTICATED && client.UserID == userID && m.deliver(client, message) {
			sent++
		}
	}

	return sent
}

func (m *Manager) ClientCount() int {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()
	return len(m.hub.clients)
}
