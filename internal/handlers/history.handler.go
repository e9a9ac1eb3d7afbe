package handlers

import (
	"fmt"

	"riego/internal/app"
	historyController "riego/internal/controllers/history"
	"riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/services"

	"github.com/gofiber/fiber/v2"
)

type HistoryHandler struct {
	Handler
	historyController historyController.HistoryControllerInterface
}

func NewHistoryHandler(app *app.App, router fiber.Router) *HistoryHandler {
	return &HistoryHandler{
		Handler:           newHandler(app, router, "history_handler"),
		historyController: app.Controllers.History,
	}
}

func (h *HistoryHandler) Register() {
	history := h.router.Group("/historial", h.middleware.RequireAuth())
	history.Get("/exportar", h.export)
	history.Get("", h.list)
	history.Post("", h.create)
	history.Get("/:id", h.get)
}

func historyFilter(c *fiber.Ctx) (repositories.HistoryFilter, error) {
	q := newQuery(c)
	filter := repositories.HistoryFilter{
		ScheduleID: q.Int("programacion"),
		ZoneID:     q.Int("zona"),
		Outcome:    models.IrrigationOutcome(q.String("resultado")),
		From:       q.DateTime("fechaMin", false),
		To:         q.DateTime("fechaMax", true),
	}
	return filter, q.Err()
}

func (h *HistoryHandler) list(c *fiber.Ctx) error {
	filter, err := historyFilter(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	records, err := h.historyController.List(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(records)
}

func (h *HistoryHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	record, err := h.historyController.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(record)
}

func (h *HistoryHandler) create(c *fiber.Ctx) error {
	var req historyController.HistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	record, err := h.historyController.Create(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *HistoryHandler) export(c *fiber.Ctx) error {
	log := h.log.Function("export")

	filter, err := historyFilter(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	content, fileName, err := h.historyController.Export(c.UserContext(), filter)
	if err != nil {
		return handleError(c, h.log, err)
	}

	log.Info("History exported", "file", fileName, "bytes", len(content))
	c.Set(fiber.HeaderContentType, services.XLSX_CONTENT_TYPE)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(content)
}
