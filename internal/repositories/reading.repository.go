package repositories

import (
	"context"
	"time"

	. "riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type ReadingFilter struct {
	SensorID *int
	From     *time.Time
	To       *time.Time
}

type ReadingRepository interface {
	List(ctx context.Context, tx *gorm.DB, filter ReadingFilter) ([]*Reading, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Reading, error)
	Delete(ctx context.Context, tx *gorm.DB, id int) error
}

type readingRepository struct {
	log logger.Logger
}

func NewReadingRepository() ReadingRepository {
	return &readingRepository{
		log: logger.New("readingRepository"),
	}
}

func (r *readingRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter ReadingFilter,
) ([]*Reading, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&Reading{})
	if filter.SensorID != nil {
		query = query.Where("sensor_id = ?", *filter.SensorID)
	}
	if filter.From != nil {
		query = query.Where("taken_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("taken_at <= ?", filter.To.UTC())
	}

	var readings []*Reading
	if err := query.Order("taken_at DESC").Order("id DESC").Find(&readings).Error; err != nil {
		return nil, log.Err("failed to list readings", err)
	}

	return readings, nil
}

func (r *readingRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Reading, error) {
	log := r.log.Function("GetByID")

	reading, err := gorm.G[Reading](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, log.Err("failed to get reading", notFound(err, "reading"), "id", id)
	}

	return &reading, nil
}

func (r *readingRepository) Delete(ctx context.Context, tx *gorm.DB, id int) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).Delete(&Reading{}, id)
	if result.Error != nil {
		return log.Err("failed to delete reading", result.Error, "id", id)
	}

	if result.RowsAffected == 0 {
		return log.Err("reading not found", notFound(gorm.ErrRecordNotFound, "reading"), "id", id)
	}

	return nil
}
