package repositories

import (
	"context"
	"strings"
	"time"

	"riego/internal/database"
	. "riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleFilter struct {
	Name        string
	ZoneID      *int
	ZoneName    string
	Frequency   Frequency
	Status      ScheduleStatus
	Active      *bool
	StartFrom   *time.Time
	StartTo     *time.Time
	EndFrom     *time.Time
	EndTo       *time.Time
	DurationMin *int
	DurationMax *int
	PriorityMin *int
	PriorityMax *int
	Search      string
	Ordering    string
}

const SCHEDULE_DEFAULT_ORDER = "schedules.priority DESC, schedules.start_time ASC"

var scheduleOrdering = Ordering{
	"nombre":             "schedules.name",
	"prioridad":          "schedules.priority",
	"horaInicio":         "schedules.start_time",
	"duracionMinutos":    "schedules.duration_minutes",
	"caudalLitrosMinuto": "schedules.flow_rate",
	"fechaInicio":        "schedules.start_date",
	"createdAt":          "schedules.created_at",
}

type ScheduleRepository interface {
	List(ctx context.Context, tx *gorm.DB, filter ScheduleFilter) ([]*Schedule, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Schedule, error)
	Create(ctx context.Context, tx *gorm.DB, schedule *Schedule) error
	Update(ctx context.Context, tx *gorm.DB, schedule *Schedule) error
	Delete(ctx context.Context, tx *gorm.DB, id int) error
	CompleteEnded(ctx context.Context, tx *gorm.DB, today time.Time) (int64, error)
}

type scheduleRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewScheduleRepository(cache database.CacheClient) ScheduleRepository {
	return &scheduleRepository{
		cache: cache,
		log:   logger.New("scheduleRepository"),
	}
}

func (r *scheduleRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter ScheduleFilter,
) ([]*Schedule, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&Schedule{}).Preload("Zone")
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(schedules.name) LIKE ?", likePattern(name))
	}
	if filter.ZoneID != nil {
		query = query.Where("schedules.zone_id = ?", *filter.ZoneID)
	}
	if zoneName := strings.TrimSpace(filter.ZoneName); zoneName != "" {
		query = query.Where(
			"schedules.zone_id IN (?)",
			tx.Model(&Zone{}).Select("id").Where("LOWER(name) LIKE ?", likePattern(zoneName)),
		)
	}
	if filter.Frequency != "" {
		query = query.Where("schedules.frequency = ?", filter.Frequency)
	}
	if filter.Status != "" {
		query = query.Where("schedules.status = ?", filter.Status)
	}
	if filter.Active != nil {
		query = query.Where("schedules.active = ?", *filter.Active)
	}
	if filter.StartFrom != nil {
		query = query.Where("schedules.start_date >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("schedules.start_date <= ?", *filter.StartTo)
	}
	if filter.EndFrom != nil {
		query = query.Where("schedules.end_date >= ?", *filter.EndFrom)
	}
	if filter.EndTo != nil {
		query = query.Where("schedules.end_date <= ?", *filter.EndTo)
	}
	if filter.DurationMin != nil {
		query = query.Where("schedules.duration_minutes >= ?", *filter.DurationMin)
	}
	if filter.DurationMax != nil {
		query = query.Where("schedules.duration_minutes <= ?", *filter.DurationMax)
	}
	if filter.PriorityMin != nil {
		query = query.Where("schedules.priority >= ?", *filter.PriorityMin)
	}
	if filter.PriorityMax != nil {
		query = query.Where("schedules.priority <= ?", *filter.PriorityMax)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"(LOWER(schedules.name) LIKE ? OR LOWER(schedules.description) LIKE ? OR schedules.zone_id IN (?))",
			pattern,
			pattern,
			tx.Model(&Zone{}).Select("id").Where("LOWER(name) LIKE ?", pattern),
		)
	}
	query = scheduleOrdering.apply(query, filter.Ordering, SCHEDULE_DEFAULT_ORDER)

	var schedules []*Schedule
	if err := query.Find(&schedules).Error; err != nil {
		return nil, log.Err("failed to list schedules", err)
	}

	return schedules, nil
}

func (r *scheduleRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id int,
) (*Schedule, error) {
	log := r.log.Function("GetByID")

	var schedule Schedule
	if err := tx.WithContext(ctx).Preload("Zone").First(&schedule, id).Error; err != nil {
		return nil, log.Err("failed to get schedule", notFound(err, "schedule"), "id", id)
	}

	return &schedule, nil
}

func (r *scheduleRepository) Create(ctx context.Context, tx *gorm.DB, schedule *Schedule) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(schedule).Error; err != nil {
		return log.Err("failed to create schedule", err, "name", schedule.Name)
	}

	r.clearCache(ctx)

	return nil
}

func (r *scheduleRepository) Update(ctx context.Context, tx *gorm.DB, schedule *Schedule) error {
	log := r.log.Function("Update")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Save(schedule).Error; err != nil {
		return log.Err("failed to update schedule", err, "id", schedule.ID)
	}

	r.clearCache(ctx)

	return nil
}

// Delete removes the schedule together with its history.
func (r *scheduleRepository) Delete(ctx context.Context, tx *gorm.DB, id int) error {
	log := r.log.Function("Delete")

	if _, err := r.GetByID(ctx, tx, id); err != nil {
		return err
	}

	db := tx.WithContext(ctx)
	if err := db.Where("schedule_id = ?", id).Delete(&HistoryRecord{}).Error; err != nil {
		return log.Err("failed to delete schedule history", err, "id", id)
	}

	if err := db.Delete(&Schedule{}, id).Error; err != nil {
		return log.Err("failed to delete schedule", err, "id", id)
	}

	r.clearCache(ctx)

	return nil
}

// CompleteEnded marks active schedules whose end date is before today as
// completed and returns how many changed.
func (r *scheduleRepository) CompleteEnded(
	ctx context.Context,
	tx *gorm.DB,
	today time.Time,
) (int64, error) {
	log := r.log.Function("CompleteEnded")

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	result := tx.WithContext(ctx).
		Model(&Schedule{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", ScheduleStatusActive, day).
		UpdateColumns(map[string]any{
			"status":     ScheduleStatusCompleted,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, log.Err("failed to complete ended schedules", result.Error)
	}

	if result.RowsAffected > 0 {
		r.clearCache(ctx)
	}

	return result.RowsAffected, nil
}

func (r *scheduleRepository) clearCache(ctx context.Context) {
	if err := clearStatisticsCache(ctx, r.cache); err != nil {
		r.log.Function("clearCache").Warn("failed to clear statistics cache", "error", err)
	}
}
