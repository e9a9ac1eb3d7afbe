package jobs

import (
	"context"
	"time"

	"riego/internal/events"
	"riego/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type endedScheduleCompleter interface {
	CompleteEnded(ctx context.Context, tx *gorm.DB, today time.Time) (int64, error)
}

// ScheduleExpiryJob marks active schedules whose end date has passed as
// completed.
type ScheduleExpiryJob struct {
	schedules   endedScheduleCompleter
	transaction *services.TransactionService
	eventBus    *events.EventBus
	metrics     *services.MetricsService
	schedule    services.Schedule
	now         func() time.Time
	log         logger.Logger
}

func NewScheduleExpiryJob(
	schedules endedScheduleCompleter,
	transaction *services.TransactionService,
	eventBus *events.EventBus,
	metrics *services.MetricsService,
	schedule services.Schedule,
) *ScheduleExpiryJob {
	log := logger.New("scheduleExpiryJob")
	log.Info("Creating new schedule expiry job", "schedule", schedule)

	return &ScheduleExpiryJob{
		schedules:   schedules,
		transaction: transaction,
		eventBus:    eventBus,
		metrics:     metrics,
		schedule:    schedule,
		now:         time.Now,
		log:         log,
	}
}

func (j *ScheduleExpiryJob) Name() string {
	return "DailyScheduleExpiry"
}

func (j *ScheduleExpiryJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *ScheduleExpiryJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	today := j.now().UTC()
	var completed int64
	err := j.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		completed, err = j.schedules.CompleteEnded(ctx, tx, today)
		return err
	})
	if err != nil {
		return log.Err("failed to complete ended schedules", err)
	}

	log.Info("Schedule expiry finished", "completed", completed)
	if completed == 0 {
		return nil
	}

	if j.metrics != nil {
		j.metrics.RecordSchedulesCompleted(completed)
	}

	if j.eventBus != nil {
		if err := j.eventBus.PublishIrrigation(events.SCHEDULES_COMPLETED, map[string]any{
			"completadas": completed,
			"fecha":       today.Format("2006-01-02"),
		}); err != nil {
			log.Warn("failed to publish expiry event", "error", err)
		}
	}

	return nil
}
