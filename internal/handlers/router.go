package handlers

import (
	"riego/internal/app"
	"riego/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func newHandler(app *app.App, router fiber.Router, file string) Handler {
	return Handler{
		middleware: app.Middleware,
		log:        logger.New("handlers").File(file),
		router:     router,
	}
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID())
	router.Use(app.Middleware.Metrics())

	router.Get("/metrics", adaptor.HTTPHandler(app.Services.Metrics.Handler()))
	WebSocketHandler(router, app)

	NewAuthHandler(app, router.Group("/accounts")).Register()

	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewZoneHandler(app, api).Register()
	NewScheduleHandler(app, api).Register()
	NewHistoryHandler(app, api).Register()
	NewSensorHandler(app, api).Register()
	NewReadingHandler(app, api).Register()

	return nil
}
