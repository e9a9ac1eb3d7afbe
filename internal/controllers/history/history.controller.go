package historyController

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

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
	RESOURCE              = "historial"
	MaxNotesLength        = 1000
	ErrMsgUnknownSchedule = "La programación indicada no existe."
	ErrMsgNotesTooLong    = "Las observaciones no pueden superar los 1000 caracteres."
	ErrMsgInvalidTime     = "Formato de hora inválido, use HH:MM."
)

type HistoryRequest struct {
	ScheduleID            *int               `json:"programacion"`
	ExecutedAt            *time.Time         `json:"fechaEjecucion"`
	ActualStartTime       *string            `json:"horaInicioReal"`
	ActualEndTime         *string            `json:"horaFinReal"`
	ActualDurationMinutes *int               `json:"duracionRealMinutos"`
	ActualFlowRate        *decimal.Decimal   `json:"caudalRealLitrosMinuto"`
	TotalConsumption      *decimal.Decimal   `json:"consumoTotalLitros"`
	Outcome               *IrrigationOutcome `json:"resultado"`
	Notes                 string             `json:"observaciones"`
	AmbientTemperature    *decimal.Decimal   `json:"temperaturaAmbiente"`
	SoilMoistureBefore    *decimal.Decimal   `json:"humedadSueloAntes"`
	SoilMoistureAfter     *decimal.Decimal   `json:"humedadSueloDespues"`
}

type HistorySimple struct {
	ID                    int               `json:"id"`
	ScheduleID            int               `json:"programacion"`
	ScheduleName          string            `json:"programacionNombre"`
	ZoneID                int               `json:"zona"`
	ZoneName              string            `json:"zonaNombre"`
	ExecutedAt            time.Time         `json:"fechaEjecucion"`
	ActualDurationMinutes int               `json:"duracionRealMinutos"`
	TotalConsumption      decimal.Decimal   `json:"consumoTotalLitros"`
	Outcome               IrrigationOutcome `json:"resultado"`
	OutcomeDisplay        string            `json:"resultadoDisplay"`
}

type HistoryFull struct {
	HistorySimple
	ActualStartTime    string           `json:"horaInicioReal"`
	ActualEndTime      *string          `json:"horaFinReal"`
	ActualFlowRate     decimal.Decimal  `json:"caudalRealLitrosMinuto"`
	Notes              string           `json:"observaciones"`
	AmbientTemperature *decimal.Decimal `json:"temperaturaAmbiente"`
	SoilMoistureBefore *decimal.Decimal `json:"humedadSueloAntes"`
	SoilMoistureAfter  *decimal.Decimal `json:"humedadSueloDespues"`
	CreatedAt          time.Time        `json:"createdAt"`
}

func ToSimple(record *HistoryRecord) HistorySimple {
	simple := HistorySimple{
		ID:                    record.ID,
		ScheduleID:            record.ScheduleID,
		ZoneID:                record.ZoneID,
		ExecutedAt:            record.ExecutedAt,
		ActualDurationMinutes: record.ActualDurationMinutes,
		TotalConsumption:      record.TotalConsumption,
		Outcome:               record.Outcome,
		OutcomeDisplay:        record.Outcome.Label(),
	}
	if record.Schedule != nil {
		simple.ScheduleName = record.Schedule.Name
	}
	if record.Zone != nil {
		simple.ZoneName = record.Zone.Name
	}
	return simple
}

func ToFull(record *HistoryRecord) *HistoryFull {
	var endTime *string
	if record.ActualEndTime != nil {
		short := record.ActualEndTime.Short()
		endTime = &short
	}

	return &HistoryFull{
		HistorySimple:      ToSimple(record),
		ActualStartTime:    record.ActualStartTime.Short(),
		ActualEndTime:      endTime,
		ActualFlowRate:     record.ActualFlowRate,
		Notes:              record.Notes,
		AmbientTemperature: record.AmbientTemperature,
		SoilMoistureBefore: record.SoilMoistureBefore,
		SoilMoistureAfter:  record.SoilMoistureAfter,
		CreatedAt:          record.CreatedAt,
	}
}

type HistoryControllerInterface interface {
	List(ctx context.Context, filter repositories.HistoryFilter) ([]HistorySimple, error)
	Get(ctx context.Context, id int) (*HistoryFull, error)
	Create(ctx context.Context, request HistoryRequest) (*HistoryFull, error)
	Export(ctx context.Context, filter repositories.HistoryFilter) ([]byte, string, error)
}

type HistoryController struct {
	historyRepo  repositories.HistoryRepository
	scheduleRepo repositories.ScheduleRepository
	transaction  *services.TransactionService
	export       *services.ExportService
	metrics      *services.MetricsService
	db           database.DB
	log          logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) HistoryControllerInterface {
	return &HistoryController{
		historyRepo:  repos.History,
		scheduleRepo: repos.Schedule,
		transaction:  services.Transaction,
		export:       services.Export,
		metrics:      services.Metrics,
		db:           db,
		log:          logger.New("historyController"),
	}
}

func parseTime(verr *types.ValidationError, field, value string) (TimeOfDay, bool) {
	parsed, err := ParseTimeOfDay(strings.TrimSpace(value))
	if err != nil {
		verr.Add(field, ErrMsgInvalidTime)
		return "", false
	}
	return parsed, true
}

// toModel builds the record. Consumption defaults to duration times flow and
// the outcome defaults to exitoso.
func (r HistoryRequest) toModel() (*HistoryRecord, error) {
	verr := types.NewValidationError()
	record := &HistoryRecord{
		Notes:              strings.TrimSpace(r.Notes),
		Outcome:            OutcomeSuccess,
		AmbientTemperature: r.AmbientTemperature,
		SoilMoistureBefore: r.SoilMoistureBefore,
		SoilMoistureAfter:  r.SoilMoistureAfter,
	}

	if r.ScheduleID == nil {
		verr.Add("programacion", types.MSG_REQUIRED)
	} else {
		record.ScheduleID = *r.ScheduleID
	}
	if r.ExecutedAt == nil {
		verr.Add("fechaEjecucion", types.MSG_REQUIRED)
	} else {
		record.ExecutedAt = r.ExecutedAt.UTC()
	}
	if r.ActualDurationMinutes == nil {
		verr.Add("duracionRealMinutos", types.MSG_REQUIRED)
	} else {
		record.ActualDurationMinutes = *r.ActualDurationMinutes
	}
	if r.ActualFlowRate == nil {
		verr.Add("caudalRealLitrosMinuto", types.MSG_REQUIRED)
	} else {
		record.ActualFlowRate = *r.ActualFlowRate
	}

	if r.ActualStartTime == nil {
		verr.Add("horaInicioReal", types.MSG_REQUIRED)
	} else if start, ok := parseTime(verr, "horaInicioReal", *r.ActualStartTime); ok {
		record.ActualStartTime = start
	}
	if r.ActualEndTime != nil && strings.TrimSpace(*r.ActualEndTime) != "" {
		if end, ok := parseTime(verr, "horaFinReal", *r.ActualEndTime); ok {
			record.ActualEndTime = &end
		}
	}

	if utf8.RuneCountInString(record.Notes) > MaxNotesLength {
		verr.Add("observaciones", ErrMsgNotesTooLong)
	}

	if r.Outcome != nil {
		record.Outcome = *r.Outcome
	}
	if r.TotalConsumption != nil {
		record.TotalConsumption = *r.TotalConsumption
	} else {
		record.TotalConsumption = decimal.NewFromInt(int64(record.ActualDurationMinutes)).
			Mul(record.ActualFlowRate)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return record, record.Validate()
}

func (c *HistoryController) List(
	ctx context.Context,
	filter repositories.HistoryFilter,
) ([]HistorySimple, error) {
	records, err := c.historyRepo.List(ctx, c.transaction.DB(ctx), filter)
	if err != nil {
		return nil, err
	}

	result := make([]HistorySimple, 0, len(records))
	for _, record := range records {
		result = append(result, ToSimple(record))
	}
	return result, nil
}

func (c *HistoryController) Get(ctx context.Context, id int) (*HistoryFull, error) {
	record, err := c.historyRepo.GetByID(ctx, c.transaction.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	return ToFull(record), nil
}

// Create appends a record for an existing schedule. The zone is taken from
// the schedule.
func (c *HistoryController) Create(ctx context.Context, request HistoryRequest) (*HistoryFull, error) {
	log := c.log.Function("Create")

	record, err := request.toModel()
	if err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, err)
	}

	err = c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		schedule, err := c.scheduleRepo.GetByID(ctx, tx, record.ScheduleID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return types.FieldError("programacion", ErrMsgUnknownSchedule)
			}
			return err
		}

		record.ZoneID = schedule.ZoneID
		if err := c.historyRepo.Create(ctx, tx, record); err != nil {
			return err
		}
		record.Schedule = schedule
		record.Zone = schedule.Zone
		return nil
	})
	if err != nil {
		return nil, c.metrics.TrackValidation(RESOURCE, log.Err("failed to create history record", err))
	}

	log.Info("History record created", "historyID", record.ID, "scheduleID", record.ScheduleID)
	return ToFull(record), nil
}

func (c *HistoryController) Export(
	ctx context.Context,
	filter repositories.HistoryFilter,
) ([]byte, string, error) {
	return c.export.ExportHistory(ctx, filter)
}
