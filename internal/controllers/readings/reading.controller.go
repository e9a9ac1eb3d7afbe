package readingController

import (
	"context"
	"time"

	"riego/internal/database"
	"riego/internal/events"
	. "riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/services"
	"riego/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const RESOURCE = "lectura"

type ReadingRequest struct {
	SensorID    *int             `json:"sensor"`
	TakenAt     *time.Time       `json:"fechaHora"`
	Value       *decimal.Decimal `json:"valor"`
	Humidity    *decimal.Decimal `json:"humedad"`
	Temperature *decimal.Decimal `json:"temperatura"`
}

type ReadingResponse struct {
	ID          int              `json:"id"`
	SensorID    int              `json:"sensor"`
	TakenAt     time.Time        `json:"fechaHora"`
	Value       decimal.Decimal  `json:"valor"`
	Humidity    *decimal.Decimal `json:"humedad"`
	Temperature *decimal.Decimal `json:"temperatura"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func ToResponse(reading *Reading) *ReadingResponse {
	return &ReadingResponse{
		ID:          reading.ID,
		SensorID:    reading.SensorID,
		TakenAt:     reading.TakenAt,
		Value:       reading.Value,
		Humidity:    reading.Humidity,
		Temperature: reading.Temperature,
		CreatedAt:   reading.CreatedAt,
	}
}

type ReadingControllerInterface interface {
	List(ctx context.Context, filter repositories.ReadingFilter) ([]*ReadingResponse, error)
	Get(ctx context.Context, id int) (*ReadingResponse, error)
	Record(ctx context.Context, request ReadingRequest) (*ReadingResponse, error)
	Delete(ctx context.Context, id int) error
}

type ReadingController struct {
	readingRepo repositories.ReadingRepository
	sensorRepo  repositories.SensorRepository
	transaction *services.TransactionService
	metrics     *services.MetricsService
	eventBus    *events.EventBus
	db          database.DB
	now         func() time.Time
	log         logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	db database.DB,
) ReadingControllerInterface {
	return &ReadingController{
		readingRepo: repos.Reading,
		sensorRepo:  repos.Sensor,
		transaction: services.Transaction,
		metrics:     services.Metrics,
		eventBus:    eventBus,
		db:          db,
		now:         time.Now,
		log:         logger.New("readingController"),
	}
}

func (r ReadingRequest) toModel(now time.Time) (*Reading, error) {
	verr := types.NewValidationError()
	reading := &Reading{
		Humidity:    r.Humidity,
		Temperature: r.Temperature,
		TakenAt:     now,
	}

	if r.SensorID == nil {
		verr.Add("sensor", types.MSG_REQUIRED)
	} else {
		reading.SensorID = *r.SensorID
	}
	if r.Value == nil {
		verr.Add("valor", types.MSG_REQUIRED)
	} else {
		reading.Value = *r.Value
	}
	if r.TakenAt != nil {
		reading.TakenAt = *r.TakenAt
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return reading, reading.Validate()
}

func (c *ReadingController) List(
	ctx context.Context,
	filter repositories.ReadingFilter,
) ([]*ReadingResponse, error) {
	readings, err := c.readingRepo.List(ctx, c.transaction.DB(ctx), filter)
	if err != nil {
		return nil, err
	}

	result := make([]*ReadingResponse, 0, len(readings))
	for _, reading := range readings {
		result = append(result, ToResponse(reading))
	}
	return result, nil
}

func (c *ReadingController) Get(ctx context.Context, id int) (*ReadingResponse, error) {
	reading, err := c.readingRepo.GetByID(ctx, c.transaction.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	return ToResponse(reading), nil
}

// Record stores the reading, moves the sensor's current value forward and
// announces it on the irrigation channel. Values outside the sensor's
// thresholds raise a separate alert.
func (c *ReadingController) Record(ctx context.Context, request ReadingRequest) (*ReadingResponse, error) {
	log := c.log.Function("Record")

	reading, err := request.toModel(c.now().UTC())
	if err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, err)
	}

	var sensor *Sensor
	err = c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		loaded, err := c.sensorRepo.GetByID(ctx, tx, reading.SensorID)
		if err != nil {
			return err
		}
		sensor = loaded
		return c.sensorRepo.RecordReading(ctx, tx, reading)
	})
	if err != nil {
		return nil, log.Err("failed to record reading", err, "sensorID", reading.SensorID)
	}

	c.metrics.RecordReading()
	c.publish(sensor, reading)

	return ToResponse(reading), nil
}

func (c *ReadingController) publish(sensor *Sensor, reading *Reading) {
	if c.eventBus == nil {
		return
	}
	log := c.log.Function("publish")

	data := map[string]any{
		"sensor":    sensor.ID,
		"codigo":    sensor.Code,
		"lectura":   reading.ID,
		"valor":     reading.Value.StringFixed(2),
		"fechaHora": reading.TakenAt.Format(time.RFC3339),
	}
	if err := c.eventBus.PublishIrrigation(events.READING_RECORDED, data); err != nil {
		log.Er("failed to publish reading", err, "readingID", reading.ID)
	}

	if !sensor.OutOfRange(reading.Value) {
		return
	}

	alert := map[string]any{
		"sensor":  sensor.ID,
		"codigo":  sensor.Code,
		"zona":    sensor.ZoneID,
		"lectura": reading.ID,
		"valor":   reading.Value.StringFixed(2),
	}
	if sensor.MinThreshold != nil {
		alert["umbralMinimo"] = sensor.MinThreshold.StringFixed(2)
	}
	if sensor.MaxThreshold != nil {
		alert["umbralMaximo"] = sensor.MaxThreshold.StringFixed(2)
	}

	log.Warn("Reading outside sensor thresholds", "sensorID", sensor.ID, "value", reading.Value)
	if err := c.eventBus.PublishIrrigation(events.THRESHOLD_EXCEEDED, alert); err != nil {
		log.Er("failed to publish threshold alert", err, "readingID", reading.ID)
	}
}

func (c *ReadingController) Delete(ctx context.Context, id int) error {
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.readingRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return c.log.Function("Delete").Err("failed to delete reading", err, "readingID", id)
	}
	return nil
}
