package middleware

import (
	"context"
	"strings"

	"riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AuthContextKey string

const (
	UserKey      AuthContextKey = "user"
	UserKeyFiber string         = "User"

	ErrMsgMissingCredentials = "Las credenciales de autenticación no se proveyeron."
	ErrMsgInvalidCredentials = "El token dado no es válido para ningún tipo de token."
	ErrMsgInactiveUser       = "Usuario inactivo o eliminado."
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
}

// RequireAuth accepts "Authorization: Bearer <access token>" for an active
// user and stores the user in the request locals and user context.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireAuth")

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, ErrMsgMissingCredentials)
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
			log.Info("invalid authorization header format")
			return unauthorized(c, ErrMsgInvalidCredentials)
		}

		userID, err := m.tokens.ParseAccess(token)
		if err != nil {
			log.Info("token validation failed", "error", err.Error())
			return unauthorized(c, ErrMsgInvalidCredentials)
		}

		user, err := m.userRepo.GetByID(c.UserContext(), m.DB.SQL, userID)
		if err != nil || !user.IsActive {
			log.Info("user not allowed", "userID", userID)
			return unauthorized(c, ErrMsgInactiveUser)
		}

		c.Locals(UserKeyFiber, user)
		c.SetUserContext(context.WithValue(c.UserContext(), UserKey, user))

		return c.Next()
	}
}

func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}
