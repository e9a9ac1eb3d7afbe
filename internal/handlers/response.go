package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"riego/internal/models"
	"riego/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	ErrMsgNotFound       = "No encontrado."
	ErrMsgInvalidBody    = "Cuerpo de la petición inválido."
	ErrMsgInvalidID      = "Identificador inválido."
	ErrMsgInternal       = "Error interno del servidor."
	ErrMsgBadCredentials = "No se encontró una cuenta activa con las credenciales proporcionadas."
	ErrMsgInvalidNumber  = "Introduzca un número válido."
	ErrMsgInvalidBoolean = "Introduzca un valor booleano válido."
)

// handleError maps controller errors onto HTTP responses.
func handleError(c *fiber.Ctx, log logger.Logger, err error) error {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verr.Fields})
	case errors.Is(err, types.ErrDomain):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, types.ErrInvalidToken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": types.ErrInvalidToken.Error()})
	case errors.Is(err, types.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrMsgBadCredentials})
	case errors.Is(err, types.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrMsgNotFound})
	}

	log.Er("unhandled error", err, "path", c.Path(), "method", c.Method())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrMsgInternal})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidBody})
}

func paramID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, types.DomainError(ErrMsgInvalidID)
	}
	return id, nil
}

// query reads optional filter values, collecting every malformed key into
// one validation error.
type query struct {
	c    *fiber.Ctx
	verr *types.ValidationError
}

func newQuery(c *fiber.Ctx) *query {
	return &query{c: c, verr: types.NewValidationError()}
}

func (q *query) value(key string) string {
	return strings.TrimSpace(q.c.Query(key))
}

func (q *query) String(key string) string {
	return q.value(key)
}

func (q *query) Int(key string) *int {
	raw := q.value(key)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		q.verr.Add(key, ErrMsgInvalidNumber)
		return nil
	}
	return &parsed
}

func (q *query) Decimal(key string) *decimal.Decimal {
	raw := q.value(key)
	if raw == "" {
		return nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		q.verr.Add(key, ErrMsgInvalidNumber)
		return nil
	}
	return &parsed
}

func (q *query) Bool(key string) *bool {
	raw := q.value(key)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		q.verr.Add(key, ErrMsgInvalidBoolean)
		return nil
	}
	return &parsed
}

// Date accepts YYYY-MM-DD.
func (q *query) Date(key string) *time.Time {
	raw := q.value(key)
	if raw == "" {
		return nil
	}
	parsed, err := models.ParseDate(raw)
	if err != nil {
		q.verr.Add(key, types.MSG_INVALID_DATE)
		return nil
	}
	return &parsed
}

// DateTime accepts RFC 3339 or a bare date. A bare upper bound covers the
// whole day.
func (q *query) DateTime(key string, upper bool) *time.Time {
	raw := q.value(key)
	if raw == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed
	}
	parsed, err := models.ParseDate(raw)
	if err != nil {
		q.verr.Add(key, types.MSG_INVALID_DATE)
		return nil
	}
	if upper {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return &parsed
}

func (q *query) Err() error {
	return q.verr.OrNil()
}
