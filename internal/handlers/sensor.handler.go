package handlers

import (
	"riego/internal/app"
	sensorController "riego/internal/controllers/sensors"
	"riego/internal/models"
	"riego/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

type SensorHandler struct {
	Handler
	sensorController sensorController.SensorControllerInterface
}

func NewSensorHandler(app *app.App, router fiber.Router) *SensorHandler {
	return &SensorHandler{
		Handler:          newHandler(app, router, "sensor_handler"),
		sensorController: app.Controllers.Sensor,
	}
}

func (h *SensorHandler) Register() {
	sensors := h.router.Group("/sensores", h.middleware.RequireAuth())
	sensors.Get("", h.list)
	sensors.Post("", h.create)
	sensors.Get("/:id/estadisticas", h.statistics)
	sensors.Get("/:id", h.get)
	sensors.Put("/:id", h.update(false))
	sensors.Patch("/:id", h.update(true))
	sensors.Delete("/:id", h.delete)
}

func (h *SensorHandler) list(c *fiber.Ctx) error {
	q := newQuery(c)
	filter := repositories.SensorFilter{
		ZoneID:   q.Int("zona"),
		Type:     models.SensorType(q.String("tipoSensor")),
		Status:   models.SensorStatus(q.String("estado")),
		Active:   q.Bool("activo"),
		Search:   q.String("search"),
		Ordering: q.String("ordering"),
	}
	if err := q.Err(); err != nil {
		return handleError(c, h.log, err)
	}

	sensors, err := h.sensorController.List(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(sensors)
}

func (h *SensorHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	sensor, err := h.sensorController.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(sensor)
}

func (h *SensorHandler) create(c *fiber.Ctx) error {
	var req sensorController.SensorRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	sensor, err := h.sensorController.Create(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sensor)
}

func (h *SensorHandler) update(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return handleError(c, h.log, err)
		}

		var req sensorController.SensorRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}

		sensor, err := h.sensorController.Update(c.UserContext(), id, req, partial)
		if err != nil {
			return handleError(c, h.log, err)
		}
		return c.JSON(sensor)
	}
}

func (h *SensorHandler) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	if err := h.sensorController.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SensorHandler) statistics(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	q := newQuery(c)
	from := q.DateTime("fechaMin", false)
	to := q.DateTime("fechaMax", true)
	if err := q.Err(); err != nil {
		return handleError(c, h.log, err)
	}

	stats, err := h.sensorController.Statistics(c.UserContext(), id, from, to)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(stats)
}
