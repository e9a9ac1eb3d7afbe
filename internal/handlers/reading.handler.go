package handlers

import (
	"riego/internal/app"
	readingController "riego/internal/controllers/readings"
	"riego/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

type ReadingHandler struct {
	Handler
	readingController readingController.ReadingControllerInterface
}

func NewReadingHandler(app *app.App, router fiber.Router) *ReadingHandler {
	return &ReadingHandler{
		Handler:           newHandler(app, router, "reading_handler"),
		readingController: app.Controllers.Reading,
	}
}

func (h *ReadingHandler) Register() {
	readings := h.router.Group("/lecturas", h.middleware.RequireAuth())
	readings.Get("", h.list)
	readings.Post("", h.record)
	readings.Get("/:id", h.get)
	readings.Delete("/:id", h.delete)
}

func (h *ReadingHandler) list(c *fiber.Ctx) error {
	q := newQuery(c)
	filter := repositories.ReadingFilter{
		SensorID: q.Int("sensor"),
		From:     q.DateTime("fechaMin", false),
		To:       q.DateTime("fechaMax", true),
	}
	if err := q.Err(); err != nil {
		return handleError(c, h.log, err)
	}

	readings, err := h.readingController.List(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(readings)
}

func (h *ReadingHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	reading, err := h.readingController.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(reading)
}

func (h *ReadingHandler) record(c *fiber.Ctx) error {
	var req readingController.ReadingRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	reading, err := h.readingController.Record(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reading)
}

func (h *ReadingHandler) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	if err := h.readingController.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
