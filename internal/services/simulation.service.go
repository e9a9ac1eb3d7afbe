package services

import (
	"context"
	"time"

	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ErrMsgScheduleInactive = "La programación no está activa."
	ErrMsgZoneInactive     = "La zona de riego no está activa."
	SIMULATION_MESSAGE     = "Ejecución de riego simulada exitosamente"
)

type SimulationRequest struct {
	ActualStart    *string `json:"horaInicioReal"`
	ActualDuration *int    `json:"duracionReal"`
	Notes          string  `json:"observaciones"`
	Persist        bool    `json:"persistir"`
}

type SimulationData struct {
	ScheduleID      int             `json:"programacion"`
	ScheduleName    string          `json:"programacionNombre"`
	ZoneID          int             `json:"zona"`
	ZoneName        string          `json:"zonaNombre"`
	StartTime       string          `json:"horaInicio"`
	DurationMinutes int             `json:"duracionMinutos"`
	FlowRate        decimal.Decimal `json:"caudalLitrosMinuto"`
	EstimatedLiters decimal.Decimal `json:"consumoEstimadoLitros"`
	Notes           string          `json:"observaciones"`
	HistoryID       *int            `json:"historial,omitempty"`
}

type SimulationResult struct {
	Success bool           `json:"success"`
	Message string         `json:"mensaje"`
	Data    SimulationData `json:"datos"`
}

// SimulationService estimates a watering run without touching hardware and
// can optionally append it to the history.
type SimulationService struct {
	db          database.DB
	repos       repositories.Repository
	transaction *TransactionService
	eventBus    *events.EventBus
	metrics     *MetricsService
	now         func() time.Time
	log         logger.Logger
}

func NewSimulationService(
	db database.DB,
	repos repositories.Repository,
	transaction *TransactionService,
	eventBus *events.EventBus,
	metrics *MetricsService,
) *SimulationService {
	return &SimulationService{
		db:          db,
		repos:       repos,
		transaction: transaction,
		eventBus:    eventBus,
		metrics:     metrics,
		now:         time.Now,
		log:         logger.New("simulationService"),
	}
}

func (r SimulationRequest) validate() (*models.TimeOfDay, error) {
	verr := types.NewValidationError()

	var start *models.TimeOfDay
	if r.ActualStart != nil {
		parsed, err := models.ParseTimeOfDay(*r.ActualStart)
		if err != nil {
			verr.Add("horaInicioReal", "Formato de hora inválido, use HH:MM.")
		} else {
			start = &parsed
		}
	}

	if r.ActualDuration != nil &&
		(*r.ActualDuration < models.SCHEDULE_MIN_DURATION || *r.ActualDuration > models.SCHEDULE_MAX_DURATION) {
		verr.Add("duracionReal", "La duración debe estar entre 1 y 480 minutos.")
	}

	return start, verr.OrNil()
}

// Estimate computes the run for an already loaded schedule and zone.
func Estimate(schedule *models.Schedule, start *models.TimeOfDay, duration *int, notes string) (SimulationData, error) {
	if !schedule.Active {
		return SimulationData{}, types.DomainError(ErrMsgScheduleInactive)
	}
	if schedule.Zone == nil || !schedule.Zone.Active {
		return SimulationData{}, types.DomainError(ErrMsgZoneInactive)
	}

	startTime := schedule.StartTime
	if start != nil {
		startTime = *start
	}

	minutes := schedule.DurationMinutes
	if duration != nil {
		minutes = *duration
	}

	return SimulationData{
		ScheduleID:      schedule.ID,
		ScheduleName:    schedule.Name,
		ZoneID:          schedule.Zone.ID,
		ZoneName:        schedule.Zone.Name,
		StartTime:       startTime.Short(),
		DurationMinutes: minutes,
		FlowRate:        schedule.FlowRate,
		EstimatedLiters: schedule.FlowRate.Mul(decimal.NewFromInt(int64(minutes))),
		Notes:           notes,
	}, nil
}

func (s *SimulationService) Simulate(
	ctx context.Context,
	scheduleID int,
	req SimulationRequest,
) (SimulationResult, error) {
	log := s.log.Function("Simulate")

	start, err := req.validate()
	if err != nil {
		return SimulationResult{}, err
	}

	schedule, err := s.repos.Schedule.GetByID(ctx, s.transaction.DB(ctx), scheduleID)
	if err != nil {
		return SimulationResult{}, log.Err("failed to load schedule", err, "scheduleID", scheduleID)
	}

	data, err := Estimate(schedule, start, req.ActualDuration, req.Notes)
	if err != nil {
		log.Info("Simulation rejected", "scheduleID", scheduleID, "reason", err.Error())
		return SimulationResult{}, err
	}

	if req.Persist {
		record, err := s.persist(ctx, schedule, data)
		if err != nil {
			return SimulationResult{}, err
		}
		data.HistoryID = &record.ID
	}

	if s.metrics != nil {
		s.metrics.RecordSimulation(req.Persist)
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishIrrigation(events.IRRIGATION_SIMULATED, map[string]any{
			"programacion":          data.ScheduleID,
			"zona":                  data.ZoneID,
			"duracionMinutos":       data.DurationMinutes,
			"consumoEstimadoLitros": data.EstimatedLiters.StringFixed(2),
			"persistido":            req.Persist,
		}); err != nil {
			log.Warn("failed to publish simulation event", "scheduleID", scheduleID, "error", err)
		}
	}

	return SimulationResult{Success: true, Message: SIMULATION_MESSAGE, Data: data}, nil
}

func (s *SimulationService) persist(
	ctx context.Context,
	schedule *models.Schedule,
	data SimulationData,
) (*models.HistoryRecord, error) {
	log := s.log.Function("persist")

	start, _ := models.ParseTimeOfDay(data.StartTime)
	end := start.AddMinutes(data.DurationMinutes)
	record := &models.HistoryRecord{
		ScheduleID:            schedule.ID,
		ZoneID:                schedule.ZoneID,
		ExecutedAt:            s.now().UTC(),
		ActualStartTime:       start,
		ActualEndTime:         &end,
		ActualDurationMinutes: data.DurationMinutes,
		ActualFlowRate:        data.FlowRate,
		TotalConsumption:      data.EstimatedLiters,
		Outcome:               models.OutcomeSuccess,
		Notes:                 data.Notes,
	}

	err := s.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return s.repos.History.Create(ctx, tx, record)
	})
	if err != nil {
		return nil, log.Err("failed to store simulated run", err, "scheduleID", schedule.ID)
	}

	return record, nil
}
