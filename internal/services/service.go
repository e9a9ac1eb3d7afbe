package services

import (
	"riego/config"
	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/repositories"
)

type Service struct {
	Transaction *TransactionService
	Statistics  *StatisticsService
	Simulation  *SimulationService
	Token       *TokenService
	Scheduler   *SchedulerService
	Export      *ExportService
	Metrics     *MetricsService
}

func New(db database.DB, config config.Config, eventBus *events.EventBus) (Service, error) {
	transactionService := NewTransactionService(db)
	repos := repositories.New(db)
	metricsService := NewMetricsService()

	return Service{
		Transaction: transactionService,
		Statistics:  NewStatisticsService(db, repos, config.StatsCacheTTL()),
		Simulation: NewSimulationService(
			db,
			repos,
			transactionService,
			eventBus,
			metricsService,
		),
		Token:     NewTokenService(config),
		Scheduler: NewSchedulerService(),
		Export:    NewExportService(db, repos),
		Metrics:   metricsService,
	}, nil
}
