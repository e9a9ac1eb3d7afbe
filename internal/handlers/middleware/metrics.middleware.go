package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Metrics records the count and latency of every request by route pattern.
func (m *Middleware) Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		m.metrics.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
