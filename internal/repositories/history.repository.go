package repositories

import (
	"context"
	"time"

	. "riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryFilter struct {
	ScheduleID *int
	ZoneID     *int
	Outcome    IrrigationOutcome
	From       *time.Time
	To         *time.Time
}

type HistoryRepository interface {
	List(ctx context.Context, tx *gorm.DB, filter HistoryFilter) ([]*HistoryRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*HistoryRecord, error)
	Create(ctx context.Context, tx *gorm.DB, record *HistoryRecord) error
}

type historyRepository struct {
	log logger.Logger
}

func NewHistoryRepository() HistoryRepository {
	return &historyRepository{
		log: logger.New("historyRepository"),
	}
}

func (r *historyRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter HistoryFilter,
) ([]*HistoryRecord, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Preload("Schedule").Preload("Zone")
	if filter.ScheduleID != nil {
		query = query.Where("schedule_id = ?", *filter.ScheduleID)
	}
	if filter.ZoneID != nil {
		query = query.Where("zone_id = ?", *filter.ZoneID)
	}
	if filter.Outcome != "" {
		query = query.Where("outcome = ?", filter.Outcome)
	}
	if filter.From != nil {
		query = query.Where("executed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("executed_at <= ?", *filter.To)
	}

	var records []*HistoryRecord
	if err := query.Order("executed_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, log.Err("failed to list history", err)
	}

	return records, nil
}

func (r *historyRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id int,
) (*HistoryRecord, error) {
	log := r.log.Function("GetByID")

	var record HistoryRecord
	err := tx.WithContext(ctx).Preload("Schedule").Preload("Zone").First(&record, id).Error
	if err != nil {
		return nil, log.Err("failed to get history record", notFound(err, "history record"), "id", id)
	}

	return &record, nil
}

func (r *historyRepository) Create(ctx context.Context, tx *gorm.DB, record *HistoryRecord) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		return log.Err(
			"failed to create history record",
			err,
			"scheduleID", record.ScheduleID,
			"zoneID", record.ZoneID,
		)
	}

	return nil
}
