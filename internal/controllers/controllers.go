package controllers

import (
	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/repositories"
	"riego/internal/services"

	authController "riego/internal/controllers/auth"
	historyController "riego/internal/controllers/history"
	readingController "riego/internal/controllers/readings"
	scheduleController "riego/internal/controllers/schedules"
	sensorController "riego/internal/controllers/sensors"
	zoneController "riego/internal/controllers/zones"
)

type Controllers struct {
	Auth     authController.AuthControllerInterface
	Zone     zoneController.ZoneControllerInterface
	Schedule scheduleController.ScheduleControllerInterface
	History  historyController.HistoryControllerInterface
	Sensor   sensorController.SensorControllerInterface
	Reading  readingController.ReadingControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	db database.DB,
) Controllers {
	return Controllers{
		Auth:     authController.New(services, repos, db),
		Zone:     zoneController.New(repos, services, db),
		Schedule: scheduleController.New(repos, services, db),
		History:  historyController.New(repos, services, db),
		Sensor:   sensorController.New(repos, services, db),
		Reading:  readingController.New(repos, services, eventBus, db),
	}
}
