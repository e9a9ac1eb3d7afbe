package repositories

import (
	"riego/internal/database"
)

type Repository struct {
	User     UserRepository
	Zone     ZoneRepository
	Schedule ScheduleRepository
	History  HistoryRepository
	Sensor   SensorRepository
	Reading  ReadingRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:     NewUserRepository(db.Cache.User),
		Zone:     NewZoneRepository(db.Cache.General),
		Schedule: NewScheduleRepository(db.Cache.General),
		History:  NewHistoryRepository(),
		Sensor:   NewSensorRepository(),
		Reading:  NewReadingRepository(),
	}
}
