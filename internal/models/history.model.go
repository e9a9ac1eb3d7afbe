package models

import (
	"errors"
	"time"

	"riego/internal/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IrrigationOutcome string

const (
	OutcomeSuccess IrrigationOutcome = "exitoso"
	OutcomePartial IrrigationOutcome = "parcial"
	OutcomeFailed  IrrigationOutcome = "fallido"
)

var outcomeLabels = map[IrrigationOutcome]string{
	OutcomeSuccess: "Exitoso",
	OutcomePartial: "Parcial",
	OutcomeFailed:  "Fallido",
}

func (o IrrigationOutcome) Label() string {
	return outcomeLabels[o]
}

func (o IrrigationOutcome) Valid() bool {
	_, ok := outcomeLabels[o]
	return ok
}

var ErrHistoryImmutable = errors.New("history records cannot be modified")

// HistoryRecord is an append only record of one watering run.
type HistoryRecord struct {
	BaseModel
	ScheduleID            int                `gorm:"not null;index"                  json:"programacion"`
	Schedule              *Schedule          `gorm:"foreignKey:ScheduleID"           json:"-"`
	ZoneID                int                `gorm:"not null;index"                  json:"zona"`
	Zone                  *Zone              `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE" json:"-"`
	ExecutedAt            time.Time          `gorm:"not null;index"                  json:"fechaEjecucion"`
	ActualStartTime       TimeOfDay          `gorm:"type:varchar(8);not null"        json:"horaInicioReal"`
	ActualEndTime         *TimeOfDay         `gorm:"type:varchar(8)"                 json:"horaFinReal"`
	ActualDurationMinutes int                `gorm:"not null"                        json:"duracionRealMinutos"`
	ActualFlowRate        decimal.Decimal    `gorm:"type:decimal(10,2);not null"     json:"caudalRealLitrosMinuto"`
	TotalConsumption      decimal.Decimal    `gorm:"type:decimal(10,2);not null"     json:"consumoTotalLitros"`
	Outcome               IrrigationOutcome  `gorm:"type:varchar(20);not null;index" json:"resultado"`
	Notes                 string             `gorm:"type:text"                       json:"observaciones"`
	AmbientTemperature    *decimal.Decimal   `gorm:"type:decimal(5,2)"               json:"temperaturaAmbiente"`
	SoilMoistureBefore    *decimal.Decimal   `gorm:"type:decimal(5,2)"               json:"humedadSueloAntes"`
	SoilMoistureAfter     *decimal.Decimal   `gorm:"type:decimal(5,2)"               json:"humedadSueloDespues"`
}

func (h *HistoryRecord) Validate() error {
	verr := types.NewValidationError()

	if h.ScheduleID == 0 {
		verr.Add("programacion", "Este campo es obligatorio.")
	}
	if h.ExecutedAt.IsZero() {
		verr.Add("fechaEjecucion", "Este campo es obligatorio.")
	}
	if !h.ActualStartTime.Valid() {
		verr.Add("horaInicioReal", "Formato de hora inválido, use HH:MM.")
	}
	if h.ActualEndTime != nil && !h.ActualEndTime.Valid() {
		verr.Add("horaFinReal", "Formato de hora inválido, use HH:MM.")
	}
	if h.ActualDurationMinutes < 0 {
		verr.Add("duracionRealMinutos", "La duración no puede ser negativa.")
	}
	if h.ActualFlowRate.IsNegative() {
		verr.Add("caudalRealLitrosMinuto", "El caudal no puede ser negativo.")
	}
	if h.TotalConsumption.IsNegative() {
		verr.Add("consumoTotalLitros", "El consumo no puede ser negativo.")
	}
	if !h.Outcome.Valid() {
		verr.Add("resultado", "Opción inválida.")
	}

	return verr.OrNil()
}

func (h *HistoryRecord) BeforeCreate(tx *gorm.DB) error {
	h.ActualStartTime = h.ActualStartTime.Normalize()
	if h.ActualEndTime != nil {
		end := h.ActualEndTime.Normalize()
		h.ActualEndTime = &end
	}
	return h.Validate()
}

func (h *HistoryRecord) BeforeUpdate(tx *gorm.DB) error {
	return ErrHistoryImmutable
}
