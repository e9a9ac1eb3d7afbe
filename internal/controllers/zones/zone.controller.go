package zoneController

import (
	"context"
	"strings"
	"time"

	"riego/internal/database"
	. "riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/services"
	"riego/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RESOURCE            = "zona"
	ErrMsgDuplicateName = "Ya existe una zona con este nombre."
)

type ZoneRequest struct {
	Name          *string          `json:"nombre"`
	Description   *string          `json:"descripcion"`
	Type          *ZoneType        `json:"tipoZona"`
	AreaM2        *decimal.Decimal `json:"areaM2"`
	WaterCapacity *decimal.Decimal `json:"capacidadAguaLitros"`
	Status        *ZoneStatus      `json:"estado"`
	Location      *string          `json:"ubicacion"`
	Active        *bool            `json:"activa"`
}

type ZoneSimple struct {
	ID          int             `json:"id"`
	Name        string          `json:"nombre"`
	Type        ZoneType        `json:"tipoZona"`
	TypeDisplay string          `json:"tipoZonaDisplay"`
	Status      ZoneStatus      `json:"estado"`
	AreaM2      decimal.Decimal `json:"areaM2"`
}

type ZoneFull struct {
	ID                   int             `json:"id"`
	Name                 string          `json:"nombre"`
	Description          string          `json:"descripcion"`
	Type                 ZoneType        `json:"tipoZona"`
	TypeDisplay          string          `json:"tipoZonaDisplay"`
	AreaM2               decimal.Decimal `json:"areaM2"`
	WaterCapacity        decimal.Decimal `json:"capacidadAguaLitros"`
	Status               ZoneStatus      `json:"estado"`
	StatusDisplay        string          `json:"estadoDisplay"`
	Location             string          `json:"ubicacion"`
	Active               bool            `json:"activa"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	EstimatedConsumption decimal.Decimal `json:"consumoEstimado"`
}

type ZoneHeader struct {
	ID     int    `json:"id"`
	Name   string `json:"nombre"`
	Type   string `json:"tipo"`
	Status string `json:"estado"`
}

type ZoneSummary struct {
	Zone          ZoneHeader      `json:"zona"`
	WaterCapacity decimal.Decimal `json:"capacidadAguaTotal"`
	AreaM2        decimal.Decimal `json:"areaTotal"`
	WaterRatio    decimal.Decimal `json:"ratioAguaArea"`
	CurrentStatus ZoneStatus      `json:"estadoActual"`
	Active        bool            `json:"activa"`
	Location      string          `json:"ubicacion"`
}

func ToSimple(zone *Zone) ZoneSimple {
	return ZoneSimple{
		ID:          zone.ID,
		Name:        zone.Name,
		Type:        zone.Type,
		TypeDisplay: zone.Type.Label(),
		Status:      zone.Status,
		AreaM2:      zone.AreaM2,
	}
}

func ToFull(zone *Zone) *ZoneFull {
	return &ZoneFull{
		ID:                   zone.ID,
		Name:                 zone.Name,
		Description:          zone.Description,
		Type:                 zone.Type,
		TypeDisplay:          zone.Type.Label(),
		AreaM2:               zone.AreaM2,
		WaterCapacity:        zone.WaterCapacity,
		Status:               zone.Status,
		StatusDisplay:        zone.Status.Label(),
		Location:             zone.Location,
		Active:               zone.Active,
		CreatedAt:            zone.CreatedAt,
		UpdatedAt:            zone.UpdatedAt,
		EstimatedConsumption: zone.WaterRatio().Round(2),
	}
}

func ToSummary(zone *Zone) *ZoneSummary {
	return &ZoneSummary{
		Zone: ZoneHeader{
			ID:     zone.ID,
			Name:   zone.Name,
			Type:   zone.Type.Label(),
			Status: zone.Status.Label(),
		},
		WaterCapacity: zone.WaterCapacity,
		AreaM2:        zone.AreaM2,
		WaterRatio:    zone.WaterRatio().Round(2),
		CurrentStatus: zone.Status,
		Active:        zone.Active,
		Location:      zone.LocationOrDefault(),
	}
}

type ZoneControllerInterface interface {
	List(ctx context.Context, filter repositories.ZoneFilter) ([]ZoneSimple, error)
	Get(ctx context.Context, id int) (*ZoneFull, error)
	Create(ctx context.Context, request ZoneRequest) (*ZoneFull, error)
	Update(ctx context.Context, id int, request ZoneRequest, partial bool) (*ZoneFull, error)
	Delete(ctx context.Context, id int) error
	Statistics(ctx context.Context, filter repositories.ZoneFilter) (services.ZoneStats, error)
	Summary(ctx context.Context, id int) (*ZoneSummary, error)
}

type ZoneController struct {
	zoneRepo    repositories.ZoneRepository
	transaction *services.TransactionService
	statistics  *services.StatisticsService
	metrics     *services.MetricsService
	db          database.DB
	log         logger.Logger
}

func New(repos repositories.Repository, services services.Service, db database.DB) ZoneControllerInterface {
	return &ZoneController{
		zoneRepo:    repos.Zone,
		transaction: services.Transaction,
		statistics:  services.Statistics,
		metrics:     services.Metrics,
		db:          db,
		log:         logger.New("zoneController"),
	}
}

// apply copies the request onto zone. Without partial, nombre, areaM2 and
// capacidadAguaLitros are required.
func (r ZoneRequest) apply(zone *Zone, partial bool) error {
	verr := types.NewValidationError()

	if r.Name != nil {
		zone.Name = *r.Name
	} else if !partial {
		verr.Add("nombre", types.MSG_REQUIRED)
	}
	if r.AreaM2 != nil {
		zone.AreaM2 = *r.AreaM2
	} else if !partial {
		verr.Add("areaM2", types.MSG_REQUIRED)
	}
	if r.WaterCapacity != nil {
		zone.WaterCapacity = *r.WaterCapacity
	} else if !partial {
		verr.Add("capacidadAguaLitros", types.MSG_REQUIRED)
	}

	if r.Description != nil {
		zone.Description = *r.Description
	}
	if r.Type != nil {
		zone.Type = *r.Type
	}
	if r.Status != nil {
		zone.Status = *r.Status
	}
	if r.Location != nil {
		zone.Location = strings.TrimSpace(*r.Location)
	}
	if r.Active != nil {
		zone.Active = *r.Active
	}

	return verr.OrNil()
}

func (c *ZoneController) List(ctx context.Context, filter repositories.ZoneFilter) ([]ZoneSimple, error) {
	zones, err := c.zoneRepo.List(ctx, c.transaction.DB(ctx), filter)
	if err != nil {
		return nil, c.log.Function("List").Err("failed to list zones", err)
	}

	result := make([]ZoneSimple, 0, len(zones))
	for _, zone := range zones {
		result = append(result, ToSimple(zone))
	}
	return result, nil
}

func (c *ZoneController) Get(ctx context.Context, id int) (*ZoneFull, error) {
	zone, err := c.zoneRepo.GetByID(ctx, c.transaction.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	return ToFull(zone), nil
}

func (c *ZoneController) Summary(ctx context.Context, id int) (*ZoneSummary, error) {
	zone, err := c.zoneRepo.GetByID(ctx, c.transaction.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	return ToSummary(zone), nil
}

func (c *ZoneController) validate(ctx context.Context, tx *gorm.DB, zone *Zone) error {
	zone.Normalize()
	if err := zone.Validate(); err != nil {
		return err
	}

	exists, err := c.zoneRepo.NameExists(ctx, tx, zone.Name, zone.ID)
	if err != nil {
		return err
	}
	if exists {
		return types.FieldError("nombre", ErrMsgDuplicateName)
	}

	return nil
}

func (c *ZoneController) Create(ctx context.Context, request ZoneRequest) (*ZoneFull, error) {
	log := c.log.Function("Create")

	zone := &Zone{Active: true}
	if err := request.apply(zone, false); err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, err)
	}

	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := c.validate(ctx, tx, zone); err != nil {
			return err
		}
		return c.zoneRepo.Create(ctx, tx, zone)
	})
	if err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, log.Err("failed to create zone", err))
	}

	log.Info("Zone created", "zoneID", zone.ID, "name", zone.Name)
	return ToFull(zone), nil
}

func (c *ZoneController) Update(
	ctx context.Context,
	id int,
	request ZoneRequest,
	partial bool,
) (*ZoneFull, error) {
	log := c.log.Function("Update")

	var zone *Zone
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		zone, err = c.zoneRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := request.apply(zone, partial); err != nil {
			return err
		}
		if err := c.validate(ctx, tx, zone); err != nil {
			return err
		}
		return c.zoneRepo.Update(ctx, tx, zone)
	})
	if err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, log.Err("failed to update zone", err, "zoneID", id))
	}

	return ToFull(zone), nil
}

func (c *ZoneController) Delete(ctx context.Context, id int) error {
	log := c.log.Function("Delete")

	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.zoneRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return log.Err("failed to delete zone", err, "zoneID", id)
	}

	log.Info("Zone deleted", "zoneID", id)
	return nil
}

func (c *ZoneController) Statistics(
	ctx context.Context,
	filter repositories.ZoneFilter,
) (services.ZoneStats, error) {
	return c.statistics.Zones(ctx, filter)
}
