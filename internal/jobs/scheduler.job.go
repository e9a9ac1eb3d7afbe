package jobs

import (
	"riego/config"
	"riego/internal/events"
	"riego/internal/repositories"
	"riego/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	service services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	scheduleExpiryJob := NewScheduleExpiryJob(
		repos.Schedule,
		service.Transaction,
		eventBus,
		service.Metrics,
		services.Daily,
	)
	if err := schedulerService.AddJob(scheduleExpiryJob); err != nil {
		return log.Err("failed to register schedule expiry job", err)
	}
	log.Info("Registered schedule expiry job", "schedule", "daily", "at", services.DAILY_JOB_TIME)

	return nil
}
