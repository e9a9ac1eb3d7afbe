package repositories

import (
	"context"
	"strings"
	"time"

	. "riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SensorFilter struct {
	ZoneID   *int
	Type     SensorType
	Status   SensorStatus
	Active   *bool
	Search   string
	Ordering string
}

var sensorOrdering = Ordering{
	"codigo":        "code",
	"tipoSensor":    "type",
	"ultimaLectura": "last_reading_at",
	"createdAt":     "created_at",
}

type SensorRepository interface {
	List(ctx context.Context, tx *gorm.DB, filter SensorFilter) ([]*Sensor, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Sensor, error)
	CodeExists(ctx context.Context, tx *gorm.DB, code string, excludeID int) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, sensor *Sensor) error
	Update(ctx context.Context, tx *gorm.DB, sensor *Sensor) error
	Delete(ctx context.Context, tx *gorm.DB, id int) error
	RecordReading(ctx context.Context, tx *gorm.DB, reading *Reading) error
	AverageHumidity(
		ctx context.Context,
		tx *gorm.DB,
		sensorID int,
		from, to *time.Time,
	) (*decimal.Decimal, error)
}

type sensorRepository struct {
	log logger.Logger
}

func NewSensorRepository() SensorRepository {
	return &sensorRepository{
		log: logger.New("sensorRepository"),
	}
}

func (r *sensorRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter SensorFilter,
) ([]*Sensor, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&Sensor{})
	if filter.ZoneID != nil {
		query = query.Where("zone_id = ?", *filter.ZoneID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	query = applySearch(query, filter.Search, "code", "brand", "model")
	query = sensorOrdering.apply(query, filter.Ordering, "code ASC")

	var sensors []*Sensor
	if err := query.Find(&sensors).Error; err != nil {
		return nil, log.Err("failed to list sensors", err)
	}

	return sensors, nil
}

func (r *sensorRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Sensor, error) {
	log := r.log.Function("GetByID")

	sensor, err := gorm.G[Sensor](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, log.Err("failed to get sensor", notFound(err, "sensor"), "id", id)
	}

	return &sensor, nil
}

func (r *sensorRepository) CodeExists(
	ctx context.Context,
	tx *gorm.DB,
	code string,
	excludeID int,
) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&Sensor{}).
		Where("code = ? AND id <> ?", strings.ToUpper(strings.TrimSpace(code)), excludeID).
		Count(&count).Error
	if err != nil {
		return false, r.log.Function("CodeExists").Err("failed to check sensor code", err)
	}

	return count > 0, nil
}

func (r *sensorRepository) Create(ctx context.Context, tx *gorm.DB, sensor *Sensor) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(sensor).Error; err != nil {
		return log.Err("failed to create sensor", err, "code", sensor.Code)
	}

	return nil
}

func (r *sensorRepository) Update(ctx context.Context, tx *gorm.DB, sensor *Sensor) error {
	log := r.log.Function("Update")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Save(sensor).Error; err != nil {
		return log.Err("failed to update sensor", err, "id", sensor.ID)
	}

	return nil
}

func (r *sensorRepository) Delete(ctx context.Context, tx *gorm.DB, id int) error {
	log := r.log.Function("Delete")

	if _, err := r.GetByID(ctx, tx, id); err != nil {
		return err
	}

	db := tx.WithContext(ctx)
	if err := db.Where("sensor_id = ?", id).Delete(&Reading{}).Error; err != nil {
		return log.Err("failed to delete sensor readings", err, "id", id)
	}

	if err := db.Delete(&Sensor{}, id).Error; err != nil {
		return log.Err("failed to delete sensor", err, "id", id)
	}

	return nil
}

// RecordReading stores the reading and moves the sensor's current value
// forward unless a newer reading is already recorded.
func (r *sensorRepository) RecordReading(
	ctx context.Context,
	tx *gorm.DB,
	reading *Reading,
) error {
	log := r.log.Function("RecordReading")

	if _, err := r.GetByID(ctx, tx, reading.SensorID); err != nil {
		return err
	}
	reading.TakenAt = reading.TakenAt.UTC()

	db := tx.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(reading).Error; err != nil {
		return log.Err("failed to create reading", err, "sensorID", reading.SensorID)
	}

	err := db.Model(&Sensor{}).
		Where("id = ? AND (last_reading_at IS NULL OR last_reading_at <= ?)", reading.SensorID, reading.TakenAt).
		UpdateColumns(map[string]any{
			"current_value":   reading.Value,
			"last_reading_at": reading.TakenAt,
		}).Error
	if err != nil {
		return log.Err("failed to update sensor current value", err, "sensorID", reading.SensorID)
	}

	return nil
}

// AverageHumidity is the mean humidity of the sensor's readings inside the
// inclusive bounds. It is nil when no reading matches.
func (r *sensorRepository) AverageHumidity(
	ctx context.Context,
	tx *gorm.DB,
	sensorID int,
	from, to *time.Time,
) (*decimal.Decimal, error) {
	log := r.log.Function("AverageHumidity")

	query := tx.WithContext(ctx).
		Model(&Reading{}).
		Select("AVG(humidity)").
		Where("sensor_id = ?", sensorID)
	if from != nil {
		query = query.Where("taken_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("taken_at <= ?", to.UTC())
	}

	var avg decimal.NullDecimal
	if err := query.Row().Scan(&avg); err != nil {
		return nil, log.Err("failed to average humidity", err, "sensorID", sensorID)
	}

	if !avg.Valid {
		return nil, nil
	}

	value := avg.Decimal.Round(2)
	return &value, nil
}
