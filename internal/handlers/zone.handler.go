package handlers

import (
	"riego/internal/app"
	zoneController "riego/internal/controllers/zones"
	"riego/internal/models"
	"riego/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

type ZoneHandler struct {
	Handler
	zoneController zoneController.ZoneControllerInterface
}

func NewZoneHandler(app *app.App, router fiber.Router) *ZoneHandler {
	return &ZoneHandler{
		Handler:        newHandler(app, router, "zone_handler"),
		zoneController: app.Controllers.Zone,
	}
}

func (h *ZoneHandler) Register() {
	zones := h.router.Group("/zonas", h.middleware.RequireAuth())
	zones.Get("/estadisticas", h.statistics)
	zones.Get("", h.list)
	zones.Post("", h.create)
	zones.Get("/:id/resumen", h.summary)
	zones.Get("/:id", h.get)
	zones.Put("/:id", h.update(false))
	zones.Patch("/:id", h.update(true))
	zones.Delete("/:id", h.delete)
}

func zoneFilter(c *fiber.Ctx) (repositories.ZoneFilter, error) {
	q := newQuery(c)
	filter := repositories.ZoneFilter{
		Name:        q.String("nombre"),
		Type:        models.ZoneType(q.String("tipoZona")),
		Status:      models.ZoneStatus(q.String("estado")),
		Active:      q.Bool("activa"),
		AreaMin:     q.Decimal("areaMin"),
		AreaMax:     q.Decimal("areaMax"),
		CapacityMin: q.Decimal("capacidadMin"),
		CapacityMax: q.Decimal("capacidadMax"),
		Search:      q.String("search"),
		Ordering:    q.String("ordering"),
	}
	return filter, q.Err()
}

func (h *ZoneHandler) list(c *fiber.Ctx) error {
	filter, err := zoneFilter(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	zones, err := h.zoneController.List(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(zones)
}

func (h *ZoneHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	zone, err := h.zoneController.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(zone)
}

func (h *ZoneHandler) create(c *fiber.Ctx) error {
	var req zoneController.ZoneRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	zone, err := h.zoneController.Create(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(zone)
}

func (h *ZoneHandler) update(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return handleError(c, h.log, err)
		}

		var req zoneController.ZoneRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}

		zone, err := h.zoneController.Update(c.UserContext(), id, req, partial)
		if err != nil {
			return handleError(c, h.log, err)
		}
		return c.JSON(zone)
	}
}

func (h *ZoneHandler) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	if err := h.zoneController.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ZoneHandler) statistics(c *fiber.Ctx) error {
	filter, err := zoneFilter(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	stats, err := h.zoneController.Statistics(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(stats)
}

func (h *ZoneHandler) summary(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	summary, err := h.zoneController.Summary(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(summary)
}
