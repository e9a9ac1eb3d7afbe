package scheduleController

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
	RESOURCE          = "programacion"
	ErrMsgUnknownZone = "La zona indicada no existe."
)

type ScheduleRequest struct {
	ZoneID          *int             `json:"zona"`
	Name            *string          `json:"nombre"`
	Description     *string          `json:"descripcion"`
	StartTime       *string          `json:"horaInicio"`
	DurationMinutes *int             `json:"duracionMinutos"`
	Frequency       *Frequency       `json:"frecuencia"`
	Weekdays        *[]Weekday       `json:"diasSemana"`
	StartDate       *string          `json:"fechaInicio"`
	EndDate         *string          `json:"fechaFin"`
	Status          *ScheduleStatus  `json:"estado"`
	FlowRate        *decimal.Decimal `json:"caudalLitrosMinuto"`
	Priority        *int             `json:"prioridad"`
	Active          *bool            `json:"activa"`
}

type ScheduleSimple struct {
	ID               int       `json:"id"`
	ZoneID           int       `json:"zona"`
	ZoneName         string    `json:"zonaNombre"`
	Name             string    `json:"nombre"`
	Frequency        Frequency `json:"frecuencia"`
	FrequencyDisplay string    `json:"frecuenciaDisplay"`
	Active           bool      `json:"activa"`
}

type ScheduleFull struct {
	ID               int             `json:"id"`
	ZoneID           int             `json:"zona"`
	ZoneName         string          `json:"zonaNombre"`
	Name             string          `json:"nombre"`
	Description      string          `json:"descripcion"`
	Frequency        Frequency       `json:"frecuencia"`
	FrequencyDisplay string          `json:"frecuenciaDisplay"`
	Weekdays         []Weekday       `json:"diasSemana"`
	StartTime        string          `json:"horaInicio"`
	StartDate        string          `json:"fechaInicio"`
	EndDate          *string         `json:"fechaFin"`
	Status           ScheduleStatus  `json:"estado"`
	StatusDisplay    string          `json:"estadoDisplay"`
	FlowRate         decimal.Decimal `json:"caudalLitrosMinuto"`
	DurationMinutes  int             `json:"duracionMinutos"`
	Priority         int             `json:"prioridad"`
	Active           bool            `json:"activa"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	TotalConsumption decimal.Decimal `json:"consumoTotalLitros"`
	IsCurrent        bool            `json:"estaVigente"`
}

func zoneName(schedule *Schedule) string {
	if schedule.Zone == nil {
		return ""
	}
	return schedule.Zone.Name
}

func formatDate(date datatypes.Date) string {
	return time.Time(date).UTC().Format(DATE_LAYOUT)
}

func ToSimple(schedule *Schedule) ScheduleSimple {
	return ScheduleSimple{
		ID:               schedule.ID,
		ZoneID:           schedule.ZoneID,
		ZoneName:         zoneName(schedule),
		Name:             schedule.Name,
		Frequency:        schedule.Frequency,
		FrequencyDisplay: schedule.Frequency.Label(),
		Active:           schedule.Active,
	}
}

func ToFull(schedule *Schedule, today time.Time) *ScheduleFull {
	var endDate *string
	if schedule.EndDate != nil {
		formatted := formatDate(*schedule.EndDate)
		endDate = &formatted
	}

	weekdays := []Weekday(schedule.Weekdays)
	if weekdays == nil {
		weekdays = []Weekday{}
	}

	return &ScheduleFull{
		ID:               schedule.ID,
		ZoneID:           schedule.ZoneID,
		ZoneName:         zoneName(schedule),
		Name:             schedule.Name,
		Description:      schedule.Description,
		Frequency:        schedule.Frequency,
		FrequencyDisplay: schedule.Frequency.Label(),
		Weekdays:         weekdays,
		StartTime:        schedule.StartTime.Short(),
		StartDate:        formatDate(schedule.StartDate),
		EndDate:          endDate,
		Status:           schedule.Status,
		StatusDisplay:    schedule.Status.Label(),
		FlowRate:         schedule.FlowRate,
		DurationMinutes:  schedule.DurationMinutes,
		Priority:         schedule.Priority,
		Active:           schedule.Active,
		CreatedAt:        schedule.CreatedAt,
		UpdatedAt:        schedule.UpdatedAt,
		TotalConsumption: schedule.TotalConsumption(),
		IsCurrent:        schedule.IsCurrent(today),
	}
}

func toSimpleList(schedules []*Schedule) []ScheduleSimple {
	result := make([]ScheduleSimple, 0, len(schedules))
	for _, schedule := range schedules {
		result = append(result, ToSimple(schedule))
	}
	return result
}

type ScheduleControllerInterface interface {
	List(ctx context.Context, filter repositories.ScheduleFilter) ([]ScheduleSimple, error)
	Get(ctx context.Context, id int) (*ScheduleFull, error)
	Create(ctx context.Context, request ScheduleRequest) (*ScheduleFull, error)
	Update(ctx context.Context, id int, request ScheduleRequest, partial bool) (*ScheduleFull, error)
	Delete(ctx context.Context, id int) error
	Current(ctx context.Context, filter repositories.ScheduleFilter) ([]ScheduleSimple, error)
	Statistics(ctx context.Context, filter repositories.ScheduleFilter) (services.ScheduleStats, error)
	Execute(ctx context.Context, id int, request services.SimulationRequest) (services.SimulationResult, error)
}

type ScheduleController struct {
	scheduleRepo repositories.ScheduleRepository
	zoneRepo     repositories.ZoneRepository
	transaction  *services.TransactionService
	statistics   *services.StatisticsService
	simulation   *services.SimulationService
	metrics      *services.MetricsService
	db           database.DB
	now          func() time.Time
	log          logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) ScheduleControllerInterface {
	return &ScheduleController{
		scheduleRepo: repos.Schedule,
		zoneRepo:     repos.Zone,
		transaction:  services.Transaction,
		statistics:   services.Statistics,
		simulation:   services.Simulation,
		metrics:      services.Metrics,
		db:           db,
		now:          time.Now,
		log:          logger.New("scheduleController"),
	}
}

func parseDate(verr *types.ValidationError, field, value string) (datatypes.Date, bool) {
	parsed, err := ParseDate(strings.TrimSpace(value))
	if err != nil {
		verr.Add(field, types.MSG_INVALID_DATE)
		return datatypes.Date{}, false
	}
	return datatypes.Date(parsed), true
}

// apply copies the request onto schedule. Without partial, the fields
// without a default are required. An empty fechaFin clears the end date.
func (r ScheduleRequest) apply(schedule *Schedule, partial bool) error {
	verr := types.NewValidationError()

	required := func(present bool, field string) bool {
		if !present && !partial {
			verr.Add(field, types.MSG_REQUIRED)
		}
		return present
	}

	if required(r.ZoneID != nil, "zona") {
		schedule.ZoneID = *r.ZoneID
	}
	if required(r.Name != nil, "nombre") {
		schedule.Name = *r.Name
	}
	if required(r.StartTime != nil, "horaInicio") {
		parsed, err := ParseTimeOfDay(strings.TrimSpace(*r.StartTime))
		if err != nil {
			verr.Add("horaInicio", "Formato de hora inválido, use HH:MM.")
		} else {
			schedule.StartTime = parsed
		}
	}
	if required(r.DurationMinutes != nil, "duracionMinutos") {
		schedule.DurationMinutes = *r.DurationMinutes
	}
	if required(r.StartDate != nil, "fechaInicio") {
		if date, ok := parseDate(verr, "fechaInicio", *r.StartDate); ok {
			schedule.StartDate = date
		}
	}
	if required(r.FlowRate != nil, "caudalLitrosMinuto") {
		schedule.FlowRate = *r.FlowRate
	}

	if r.EndDate != nil {
		if strings.TrimSpace(*r.EndDate) == "" {
			schedule.EndDate = nil
		} else if date, ok := parseDate(verr, "fechaFin", *r.EndDate); ok {
			schedule.EndDate = &date
		}
	}
	if r.Description != nil {
		schedule.Description = *r.Description
	}
	if r.Frequency != nil {
		schedule.Frequency = *r.Frequency
	}
	if r.Weekdays != nil {
		schedule.Weekdays = datatypes.JSONSlice[Weekday](*r.Weekdays)
	}
	if r.Status != nil {
		schedule.Status = *r.Status
	}
	if r.Priority != nil {
		schedule.Priority = *r.Priority
	}
	if r.Active != nil {
		schedule.Active = *r.Active
	}

	return verr.OrNil()
}

// resolveZone loads the schedule's zone. New schedules and schedules moved to
// another zone require the zone to be active.
func (c *ScheduleController) resolveZone(
	ctx context.Context,
	tx *gorm.DB,
	schedule *Schedule,
	previousZoneID int,
) (*Zone, error) {
	if schedule.ZoneID == 0 {
		return nil, nil
	}

	zone, err := c.zoneRepo.GetByID(ctx, tx, schedule.ZoneID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.FieldError("zona", ErrMsgUnknownZone)
		}
		return nil, err
	}

	if schedule.ZoneID != previousZoneID {
		if err := CheckZoneActive(zone); err != nil {
			return nil, err
		}
	}

	schedule.Zone = zone
	return zone, nil
}

func (c *ScheduleController) save(
	ctx context.Context,
	schedule *Schedule,
	request ScheduleRequest,
	partial bool,
	previousZoneID int,
	persist func(context.Context, *gorm.DB, *Schedule) error,
) error {
	return c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := request.apply(schedule, partial); err != nil {
			return err
		}

		zone, err := c.resolveZone(ctx, tx, schedule, previousZoneID)
		if err != nil {
			return err
		}

		schedule.Normalize()
		if err := schedule.Validate(zone); err != nil {
			return err
		}

		return persist(ctx, tx, schedule)
	})
}

func (c *ScheduleController) List(
	ctx context.Context,
	filter repositories.ScheduleFilter,
) ([]ScheduleSimple, error) {
	schedules, err := c.scheduleRepo.List(ctx, c.transaction.DB(ctx), filter)
	if err != nil {
		return nil, c.log.Function("List").Err("failed to list schedules", err)
	}
	return toSimpleList(schedules), nil
}

func (c *ScheduleController) Get(ctx context.Context, id int) (*ScheduleFull, error) {
	schedule, err := c.scheduleRepo.GetByID(ctx, c.transaction.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	return ToFull(schedule, c.now().UTC()), nil
}

func (c *ScheduleController) Create(ctx context.Context, request ScheduleRequest) (*ScheduleFull, error) {
	log := c.log.Function("Create")

	schedule := &Schedule{Active: true}
	if err := c.save(ctx, schedule, request, false, 0, c.scheduleRepo.Create); err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, log.Err("failed to create schedule", err))
	}

	log.Info("Schedule created", "scheduleID", schedule.ID, "zoneID", schedule.ZoneID)
	return ToFull(schedule, c.now().UTC()), nil
}

func (c *ScheduleController) Update(
	ctx context.Context,
	id int,
	request ScheduleRequest,
	partial bool,
) (*ScheduleFull, error) {
	log := c.log.Function("Update")

	schedule, err := c.scheduleRepo.GetByID(ctx, c.transaction.DB(ctx), id)
	if err != nil {
		return nil, err
	}

	if err := c.save(ctx, schedule, request, partial, schedule.ZoneID, c.scheduleRepo.Update); err != nil {
		return nil, c.metrics.TrackValidation(
			RESOURCE,
			log.Err("failed to update schedule", err, "scheduleID", id),
		)
	}

	return ToFull(schedule, c.now().UTC()), nil
}

func (c *ScheduleController) Delete(ctx context.Context, id int) error {
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.scheduleRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return c.log.Function("Delete").Err("failed to delete schedule", err, "scheduleID", id)
	}
	return nil
}

func (c *ScheduleController) Current(
	ctx context.Context,
	filter repositories.ScheduleFilter,
) ([]ScheduleSimple, error) {
	schedules, err := c.statistics.Current(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toSimpleList(schedules), nil
}

func (c *ScheduleController) Statistics(
	ctx context.Context,
	filter repositories.ScheduleFilter,
) (services.ScheduleStats, error) {
	return c.statistics.Schedules(ctx, filter)
}

func (c *ScheduleController) Execute(
	ctx context.Context,
	id int,
	request services.SimulationRequest,
) (services.SimulationResult, error) {
	return c.simulation.Simulate(ctx, id, request)
}
