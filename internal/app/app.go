package app

import (
	"context"

	"riego/config"
	"riego/internal/controllers"
	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/handlers/middleware"
	"riego/internal/jobs"
	"riego/internal/repositories"
	"riego/internal/services"
	"riego/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	app, err := Build(config, db)
	if err != nil {
		_ = db.Close()
		return &App{}, err
	}

	return app, nil
}

// Build wires every component on top of an open database.
func Build(config config.Config, db database.DB) (*App, error) {
	log := logger.New("app").Function("Build")

	eventBus := events.New(db.Cache.Events, config)

	services, err := services.New(db, config, eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}
	repos := repositories.New(db)

	websocket, err := websockets.New(db, eventBus, services.Token, repos.User)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	if err := jobs.RegisterAllJobs(services.Scheduler, config, services, repos, eventBus); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware.New(db, eventBus, config, services, repos),
		Websocket:   websocket,
		EventBus:    eventBus,
		Services:    services,
		Repos:       repos,
		Controllers: controllers.New(services, repos, eventBus, db),
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Token,
		a.Services.Scheduler,
		a.Services.Metrics,
		a.Controllers.Auth,
		a.Controllers.Zone,
		a.Controllers.Schedule,
		a.Controllers.History,
		a.Controllers.Sensor,
		a.Controllers.Reading,
		a.Repos.User,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
