package sensorController

import (
	"context"
	"errors"
	"strings"
	"time"

	"riego/internal/database"
	. "riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/services"
	"riego/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RESOURCE            = "sensor"
	ErrMsgDuplicateCode = "Ya existe un sensor con este código."
	ErrMsgUnknownZone   = "La zona indicada no existe."
)

type SensorRequest struct {
	ZoneID       *int             `json:"zona"`
	Code         *string          `json:"codigo"`
	Type         *SensorType      `json:"tipoSensor"`
	Brand        *string          `json:"marca"`
	ModelName    *string          `json:"modelo"`
	Status       *SensorStatus    `json:"estado"`
	Unit         *string          `json:"unidadMedida"`
	MinThreshold *decimal.Decimal `json:"umbralMinimo"`
	MaxThreshold *decimal.Decimal `json:"umbralMaximo"`
	InstalledOn  *string          `json:"fechaInstalacion"`
	Active       *bool            `json:"activo"`
}

type SensorSimple struct {
	ID           int              `json:"id"`
	ZoneID       int              `json:"zona"`
	Code         string           `json:"codigo"`
	Type         SensorType       `json:"tipoSensor"`
	Status       SensorStatus     `json:"estado"`
	CurrentValue *decimal.Decimal `json:"valorActual"`
	Active       bool             `json:"activo"`
}

type SensorFull struct {
	ID            int              `json:"id"`
	ZoneID        int              `json:"zona"`
	Code          string           `json:"codigo"`
	Type          SensorType       `json:"tipoSensor"`
	TypeDisplay   string           `json:"tipoSensorDisplay"`
	Brand         string           `json:"marca"`
	ModelName     string           `json:"modelo"`
	Status        SensorStatus     `json:"estado"`
	StatusDisplay string           `json:"estadoDisplay"`
	CurrentValue  *decimal.Decimal `json:"valorActual"`
	Unit          string           `json:"unidadMedida"`
	MinThreshold  *decimal.Decimal `json:"umbralMinimo"`
	MaxThreshold  *decimal.Decimal `json:"umbralMaximo"`
	InstalledOn   *string          `json:"fechaInstalacion"`
	LastReadingAt *time.Time       `json:"ultimaLectura"`
	Active        bool             `json:"activo"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// HumidityStats is the average humidity of a sensor, null without readings.
type HumidityStats struct {
	SensorID        int              `json:"sensor"`
	AverageHumidity *decimal.Decimal `json:"avgHumedad"`
}

func ToSimple(sensor *Sensor) SensorSimple {
	return SensorSimple{
		ID:           sensor.ID,
		ZoneID:       sensor.ZoneID,
		Code:         sensor.Code,
		Type:         sensor.Type,
		Status:       sensor.Status,
		CurrentValue: sensor.CurrentValue,
		Active:       sensor.Active,
	}
}

func ToFull(sensor *Sensor) *SensorFull {
	var installedOn *string
	if sensor.InstalledOn != nil {
		formatted := time.Time(*sensor.InstalledOn).UTC().Format(DATE_LAYOUT)
		installedOn = &formatted
	}

	return &SensorFull{
		ID:            sensor.ID,
		ZoneID:        sensor.ZoneID,
		Code:          sensor.Code,
		Type:          sensor.Type,
		TypeDisplay:   sensor.Type.Label(),
		Brand:         sensor.Brand,
		ModelName:     sensor.ModelName,
		Status:        sensor.Status,
		StatusDisplay: sensor.Status.Label(),
		CurrentValue:  sensor.CurrentValue,
		Unit:          sensor.Unit,
		MinThreshold:  sensor.MinThreshold,
		MaxThreshold:  sensor.MaxThreshold,
		InstalledOn:   installedOn,
		LastReadingAt: sensor.LastReadingAt,
		Active:        sensor.Active,
		CreatedAt:     sensor.CreatedAt,
		UpdatedAt:     sensor.UpdatedAt,
	}
}

type SensorControllerInterface interface {
	List(ctx context.Context, filter repositories.SensorFilter) ([]SensorSimple, error)
	Get(ctx context.Context, id int) (*SensorFull, error)
	Create(ctx context.Context, request SensorRequest) (*SensorFull, error)
	Update(ctx context.Context, id int, request SensorRequest, partial bool) (*SensorFull, error)
	Delete(ctx context.Context, id int) error
	Statistics(ctx context.Context, id int, from, to *time.Time) (HumidityStats, error)
}

type SensorController struct {
	sensorRepo  repositories.SensorRepository
	zoneRepo    repositories.ZoneRepository
	transaction *services.TransactionService
	metrics     *services.MetricsService
	db          database.DB
	log         logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) SensorControllerInterface {
	return &SensorController{
		sensorRepo:  repos.Sensor,
		zoneRepo:    repos.Zone,
		transaction: services.Transaction,
		metrics:     services.Metrics,
		db:          db,
		log:         logger.New("sensorController"),
	}
}

func (r SensorRequest) apply(sensor *Sensor, partial bool) error {
	verr := types.NewValidationError()

	required := func(present bool, field string) bool {
		if !present && !partial {
			verr.Add(field, types.MSG_REQUIRED)
		}
		return present
	}

	if required(r.ZoneID != nil, "zona") {
		sensor.ZoneID = *r.ZoneID
	}
	if required(r.Code != nil, "codigo") {
		sensor.Code = *r.Code
	}
	if required(r.Type != nil, "tipoSensor") {
		sensor.Type = *r.Type
	}

	if r.Brand != nil {
		sensor.Brand = strings.TrimSpace(*r.Brand)
	}
	if r.ModelName != nil {
		sensor.ModelName = strings.TrimSpace(*r.ModelName)
	}
	if r.Status != nil {
		sensor.Status = *r.Status
	}
	if r.Unit != nil {
		sensor.Unit = strings.TrimSpace(*r.Unit)
	}
	if r.MinThreshold != nil {
		sensor.MinThreshold = r.MinThreshold
	}
	if r.MaxThreshold != nil {
		sensor.MaxThreshold = r.MaxThreshold
	}
	if r.InstalledOn != nil {
		if strings.TrimSpace(*r.InstalledOn) == "" {
			sensor.InstalledOn = nil
		} else if parsed, err := ParseDate(strings.TrimSpace(*r.InstalledOn)); err != nil {
			verr.Add("fechaInstalacion", types.MSG_INVALID_DATE)
		} else {
			date := datatypes.Date(parsed)
			sensor.InstalledOn = &date
		}
	}
	if r.Active != nil {
		sensor.Active = *r.Active
	}

	return verr.OrNil()
}

func (c *SensorController) validate(ctx context.Context, tx *gorm.DB, sensor *Sensor) error {
	sensor.Normalize()
	if err := sensor.Validate(); err != nil {
		return err
	}

	if _, err := c.zoneRepo.GetByID(ctx, tx, sensor.ZoneID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.FieldError("zona", ErrMsgUnknownZone)
		}
		return err
	}

	exists, err := c.sensorRepo.CodeExists(ctx, tx, sensor.Code, sensor.ID)
	if err != nil {
		return err
	}
	if exists {
		return types.FieldError("codigo", ErrMsgDuplicateCode)
	}

	return nil
}

func (c *SensorController) save(
	ctx context.Context,
	sensor *Sensor,
	request SensorRequest,
	partial bool,
	persist func(context.Context, *gorm.DB, *Sensor) error,
) error {
	return c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := request.apply(sensor, partial); err != nil {
			return err
		}
		if err := c.validate(ctx, tx, sensor); err != nil {
			return err
		}
		return persist(ctx, tx, sensor)
	})
}

func (c *SensorController) List(
	ctx context.Context,
	filter repositories.SensorFilter,
) ([]SensorSimple, error) {
	sensors, err := c.sensorRepo.List(ctx, c.transaction.DB(ctx), filter)
	if err != nil {
		return nil, c.log.Function("List").Err("failed to list sensors", err)
	}

	result := make([]SensorSimple, 0, len(sensors))
	for _, sensor := range sensors {
		result = append(result, ToSimple(sensor))
	}
	return result, nil
}

func (c *SensorController) Get(ctx context.Context, id int) (*SensorFull, error) {
	sensor, err := c.sensorRepo.GetByID(ctx, c.transaction.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	return ToFull(sensor), nil
}

func (c *SensorController) Create(ctx context.Context, request SensorRequest) (*SensorFull, error) {
	log := c.log.Function("Create")

	sensor := &Sensor{Active: true}
	if err := c.save(ctx, sensor, request, false, c.sensorRepo.Create); err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, log.Err("failed to create sensor", err))
	}

	log.Info("Sensor created", "sensorID", sensor.ID, "code", sensor.Code)
	return ToFull(sensor), nil
}

func (c *SensorController) Update(
	ctx context.Context,
	id int,
	request SensorRequest,
	partial bool,
) (*SensorFull, error) {
	log := c.log.Function("Update")

	sensor, err := c.sensorRepo.GetByID(ctx, c.transaction.DB(ctx), id)
	if err != nil {
		return nil, err
	}

	if err := c.save(ctx, sensor, request, partial, c.sensorRepo.Update); err != nil {
		return nil, c.metrics.TrackValidation(
			RESOURCE,
			log.Err("failed to update sensor", err, "sensorID", id),
		)
	}

	return ToFull(sensor), nil
}

func (c *SensorController) Delete(ctx context.Context, id int) error {
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.sensorRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return c.log.Function("Delete").Err("failed to delete sensor", err, "sensorID", id)
	}
	return nil
}

func (c *SensorController) Statistics(
	ctx context.Context,
	id int,
	from, to *time.Time,
) (HumidityStats, error) {
	tx := c.transaction.DB(ctx)
	if _, err := c.sensorRepo.GetByID(ctx, tx, id); err != nil {
		return HumidityStats{}, err
	}

	avg, err := c.sensorRepo.AverageHumidity(ctx, tx, id, from, to)
	if err != nil {
		return HumidityStats{}, err
	}

	return HumidityStats{SensorID: id, AverageHumidity: avg}, nil
}
