package middleware

import (
	"riego/config"
	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/repositories"
	"riego/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type Middleware struct {
	DB       database.DB
	userRepo repositories.UserRepository
	tokens   *services.TokenService
	metrics  *services.MetricsService
	Config   config.Config
	log      logger.Logger
	eventBus *events.EventBus
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	services services.Service,
	repos repositories.Repository,
) Middleware {
	return Middleware{
		DB:       db,
		userRepo: repos.User,
		tokens:   services.Token,
		metrics:  services.Metrics,
		Config:   config,
		log:      logger.New("middleware"),
		eventBus: eventBus,
	}
}
