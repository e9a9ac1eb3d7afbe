package websockets

import (
	"context"
	"time"

	"riego/internal/events"
)

const AUTH_HANDSHAKE_TIMEOUT = 10 * time.Second

func (c *Client) startAuthTimeout() {
	log := c.Manager.log.Function("startAuthTimeout")

	time.AfterFunc(AUTH_HANDSHAKE_TIMEOUT, func() {
		if c.Manager.clientStatus(c) != STATUS_UNAUTHENTICATED {
			return
		}

		log.Warn("Client failed to authenticate within timeout", "clientID", c.ID)
		c.sendAuthFailure("authentication_timeout", "Authentication timeout")
	})
}

// handleAuthResponse expects {"type":"auth_response","data":{"token":"<access>"}}.
func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Manager.clientStatus(c) != STATUS_UNAUTHENTICATED {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		c.sendAuthFailure("authentication_failed", "Invalid token format")
		return
	}

	userID, err := c.Manager.tokens.ParseAccess(token)
	if err != nil {
		log.Info("WebSocket token validation failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("authentication_failed", "Authentication failed")
		return
	}

	user, err := c.Manager.users.GetByID(context.Background(), c.Manager.db.SQL, userID)
	if err != nil || !user.IsActive {
		log.Info("WebSocket user rejected", "clientID", c.ID, "userID", userID)
		c.sendAuthFailure("authentication_failed", "User not found")
		return
	}

	if !c.Manager.authenticateClient(c, user.ID) {
		return
	}

	log.Info("WebSocket client authenticated", "clientID", c.ID, "userID", user.ID)

	success := newSystemMessage(events.AUTH_SUCCESS, "authenticated", map[string]any{"userId": user.ID})
	success.UserID = user.ID
	c.send <- success
}

func (c *Client) sendAuthFailure(action, reason string) {
	log := c.Manager.log.Function("sendAuthFailure")

	select {
	case c.send <- newSystemMessage(events.AUTH_FAILURE, action, map[string]any{"reason": reason}):
	default:
	}

	log.Info("Auth failure sent, closing connection", "clientID", c.ID, "reason", reason)

	if c.Connection == nil {
		return
	}
	time.AfterFunc(100*time.Millisecond, func() {
		_ = c.Connection.Close()
	})
}

func (c *Client) sendAuthRequest() error {
	request := newSystemMessage(events.AUTH_REQUEST, "authenticate", nil)
	if err := c.Connection.WriteJSON(request); err != nil {
		return c.Manager.log.Function("sendAuthRequest").Err("failed to send auth request", err)
	}
	return nil
}

func (c *Client) handleUnauthenticatedMessage(message Message) {
	c.Manager.log.Function("handleUnauthenticatedMessage").Warn(
		"Blocking message from unauthenticated client",
		"clientID", c.ID,
		"messageType", message.Type,
	)

	c.send <- newSystemMessage(
		events.AUTH_FAILURE,
		"authentication_required",
		map[string]any{"reason": "Authentication required"},
	)
}
