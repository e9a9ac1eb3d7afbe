package handlers

import (
	"riego/internal/app"
	scheduleController "riego/internal/controllers/schedules"
	"riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ScheduleHandler struct {
	Handler
	scheduleController scheduleController.ScheduleControllerInterface
}

func NewScheduleHandler(app *app.App, router fiber.Router) *ScheduleHandler {
	return &ScheduleHandler{
		Handler:            newHandler(app, router, "schedule_handler"),
		scheduleController: app.Controllers.Schedule,
	}
}

func (h *ScheduleHandler) Register() {
	schedules := h.router.Group("/programaciones", h.middleware.RequireAuth())
	schedules.Get("/vigentes", h.current)
	schedules.Get("/estadisticas", h.statistics)
	schedules.Get("", h.list)
	schedules.Post("", h.create)
	schedules.Post("/:id/ejecutar", h.execute)
	schedules.Get("/:id", h.get)
	schedules.Put("/:id", h.update(false))
	schedules.Patch("/:id", h.update(true))
	schedules.Delete("/:id", h.delete)
}

func scheduleFilter(c *fiber.Ctx) (repositories.ScheduleFilter, error) {
	q := newQuery(c)
	filter := repositories.ScheduleFilter{
		Name:        q.String("nombre"),
		ZoneID:      q.Int("zona"),
		ZoneName:    q.String("zonaNombre"),
		Frequency:   models.Frequency(q.String("frecuencia")),
		Status:      models.ScheduleStatus(q.String("estado")),
		Active:      q.Bool("activa"),
		StartFrom:   q.Date("fechaInicioDesde"),
		StartTo:     q.Date("fechaInicioHasta"),
		EndFrom:     q.Date("fechaFinDesde"),
		EndTo:       q.Date("fechaFinHasta"),
		DurationMin: q.Int("duracionMin"),
		DurationMax: q.Int("duracionMax"),
		PriorityMin: q.Int("prioridadMin"),
		PriorityMax: q.Int("prioridadMax"),
		Search:      q.String("search"),
		Ordering:    q.String("ordering"),
	}
	return filter, q.Err()
}

func (h *ScheduleHandler) list(c *fiber.Ctx) error {
	filter, err := scheduleFilter(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	schedules, err := h.scheduleController.List(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(schedules)
}

func (h *ScheduleHandler) current(c *fiber.Ctx) error {
	filter, err := scheduleFilter(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	schedules, err := h.scheduleController.Current(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(schedules)
}

func (h *ScheduleHandler) statistics(c *fiber.Ctx) error {
	filter, err := scheduleFilter(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	stats, err := h.scheduleController.Statistics(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(stats)
}

func (h *ScheduleHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	schedule, err := h.scheduleController.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(schedule)
}

func (h *ScheduleHandler) create(c *fiber.Ctx) error {
	var req scheduleController.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	schedule, err := h.scheduleController.Create(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(schedule)
}

func (h *ScheduleHandler) update(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return handleError(c, h.log, err)
		}

		var req scheduleController.ScheduleRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}

		schedule, err := h.scheduleController.Update(c.UserContext(), id, req, partial)
		if err != nil {
			return handleError(c, h.log, err)
		}
		return c.JSON(schedule)
	}
}

func (h *ScheduleHandler) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	if err := h.scheduleController.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// execute runs a simulated irrigation. The body is optional.
func (h *ScheduleHandler) execute(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	var req services.SimulationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}

	result, err := h.scheduleController.Execute(c.UserContext(), id, req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(result)
}
