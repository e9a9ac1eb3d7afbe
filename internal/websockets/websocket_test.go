package websockets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"riego/config"
	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	manager *Manager
	bus     *events.EventBus
	tokens  *services.TokenService
	user    *models.User
}

func newHarness(t *testing.T) harness {
	t.Helper()

	sql, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(sql, logger.New("test")))
	db := database.NewFromSQL(sql)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(nil)
	user := &models.User{Username: "operador", Email: "operador@riego.test", IsActive: true}
	require.NoError(t, user.SetPassword("clave-segura-1"))
	require.NoError(t, users.Create(context.Background(), sql, user))

	cfg := config.Config{JWTSecret: "ws-secret", AccessTokenTTLMinutes: 5, RefreshTokenTTLHours: 1}
	bus := events.New(nil, cfg)
	tokens := services.NewTokenService(cfg)

	manager, err := New(db, bus, tokens, users)
	require.NoError(t, err)

	return harness{manager: manager, bus: bus, tokens: tokens, user: user}
}

func (h harness) client(id string) *Client {
	client := &Client{
		ID:      id,
		Manager: h.manager,
		Status:  STATUS_UNAUTHENTICATED,
		send:    make(chan Message, SEND_CHANNEL_SIZE),
	}
	h.manager.registerClient(client)
	return client
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case message := <-client.send:
		return message
	case <-time.After(time.Second):
		t.Fatalf("no message for client %s", client.ID)
		return Message{}
	}
}

func TestClient_Authentication(t *testing.T) {
	h := newHarness(t)
	pair, err := h.tokens.IssuePair(h.user)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		client := h.client("valid")
		client.routeMessage(Message{Type: events.AUTH_RESPONSE, Data: map[string]any{"token": pair.Access}})

		message := receive(t, client)
		assert.Equal(t, events.AUTH_SUCCESS, message.Type)
		assert.Equal(t, h.user.ID, message.UserID)
		assert.Equal(t, STATUS_AUTHENTICATED, h.manager.clientStatus(client))
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		client := h.client("refresh")
		client.routeMessage(Message{Type: events.AUTH_RESPONSE, Data: map[string]any{"token": pair.Refresh}})

		message := receive(t, client)
		assert.Equal(t, events.AUTH_FAILURE, message.Type)
		assert.Equal(t, STATUS_UNAUTHENTICATED, h.manager.clientStatus(client))
	})

	t.Run("missing token", func(t *testing.T) {
		client := h.client("missing")
		client.routeMessage(Message{Type: events.AUTH_RESPONSE})
		assert.Equal(t, events.AUTH_FAILURE, receive(t, client).Type)
	})

	t.Run("messages before authentication are blocked", func(t *testing.T) {
		client := h.client("early")
		client.routeMessage(Message{Type: events.PING})

		message := receive(t, client)
		assert.Equal(t, events.AUTH_FAILURE, message.Type)
		assert.Equal(t, "authentication_required", message.Action)
	})
}

func TestManager_RelaysIrrigationEvents(t *testing.T) {
	h := newHarness(t)

	authenticated := h.client("authenticated")
	require.True(t, h.manager.authenticateClient(authenticated, h.user.ID))
	anonymous := h.client("anonymous")

	require.NoError(t, h.bus.PublishIrrigation(events.IRRIGATION_SIMULATED, map[string]any{"zona": 1}))

	message := receive(t, authenticated)
	assert.Equal(t, events.IRRIGATION_SIMULATED, message.Type)
	assert.Equal(t, events.IRRIGATION_CHANNEL.String(), message.Channel)
	assert.Equal(t, 1, message.Data["zona"])

	select {
	case message := <-anonymous.send:
		t.Fatalf("anonymous client received %v", message.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_UnregisterIsIdempotent(t *testing.T) {
	h := newHarness(t)
	client := h.client("gone")
	require.Equal(t, 1, h.manager.ClientCount())

	h.manager.unregisterClient(client)
	h.manager.unregisterClient(client)

	assert.Equal(t, 0, h.manager.ClientCount())
	assert.Equal(t, STATUS_CLOSED, h.manager.clientStatus(client))
}

func TestManager_SendMessageToUser(t *testing.T) {
	h := newHarness(t)

	first := h.client("first")
	second := h.client("second")
	require.True(t, h.manager.authenticateClient(first, h.user.ID))
	require.True(t, h.manager.authenticateClient(second, h.user.ID+1))

	sent := h.manager.SendMessageToUser(h.user.ID, newSystemMessage(events.PONG, "pong", nil))
	assert.Equal(t, 1, sent)
	assert.Equal(t, events.PONG, receive(t, first).Type)
}
