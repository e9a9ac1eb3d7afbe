package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"riego/internal/types"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "diaria"
	FrequencyWeekly   Frequency = "semanal"
	FrequencyBiweekly Frequency = "quincenal"
	FrequencyMonthly  Frequency = "mensual"
	FrequencyCustom   Frequency = "personalizada"
)

var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyBiweekly,
	FrequencyMonthly,
	FrequencyCustom,
}

var frequencyLabels = map[Frequency]string{
	FrequencyDaily:    "Diaria",
	FrequencyWeekly:   "Semanal",
	FrequencyBiweekly: "Quincenal",
	FrequencyMonthly:  "Mensual",
	FrequencyCustom:   "Personalizada",
}

func (f Frequency) Label() string {
	return frequencyLabels[f]
}

func (f Frequency) Valid() bool {
	_, ok := frequencyLabels[f]
	return ok
}

type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "activa"
	ScheduleStatusPaused    ScheduleStatus = "pausada"
	ScheduleStatusCompleted ScheduleStatus = "completada"
	ScheduleStatusCancelled ScheduleStatus = "cancelada"
)

var scheduleStatusLabels = map[ScheduleStatus]string{
	ScheduleStatusActive:    "Activa",
	ScheduleStatusPaused:    "Pausada",
	ScheduleStatusCompleted: "Completada",
	ScheduleStatusCancelled: "Cancelada",
}

func (s ScheduleStatus) Label() string {
	return scheduleStatusLabels[s]
}

func (s ScheduleStatus) Valid() bool {
	_, ok := scheduleStatusLabels[s]
	return ok
}

type Weekday string

const (
	Monday    Weekday = "lunes"
	Tuesday   Weekday = "martes"
	Wednesday Weekday = "miercoles"
	Thursday  Weekday = "jueves"
	Friday    Weekday = "viernes"
	Saturday  Weekday = "sabado"
	Sunday    Weekday = "domingo"
)

var weekdayLabels = map[Weekday]string{
	Monday:    "Lunes",
	Tuesday:   "Martes",
	Wednesday: "Miércoles",
	Thursday:  "Jueves",
	Friday:    "Viernes",
	Saturday:  "Sábado",
	Sunday:    "Domingo",
}

func (d Weekday) Label() string {
	return weekdayLabels[d]
}

func (d Weekday) Valid() bool {
	_, ok := weekdayLabels[d]
	return ok
}

const (
	SCHEDULE_NAME_MIN_LENGTH  = 3
	SCHEDULE_MIN_DURATION     = 1
	SCHEDULE_MAX_DURATION     = 480
	SCHEDULE_MIN_PRIORITY     = 1
	SCHEDULE_MAX_PRIORITY     = 10
	SCHEDULE_DEFAULT_PRIORITY = 1
)

var ScheduleMaxFlowRate = decimal.NewFromInt(1000)

const ErrMsgInactiveZone = "No se puede crear una programación para una zona inactiva."

type Schedule struct {
	BaseModel
	ZoneID          int                          `gorm:"not null;index"                  json:"zona"`
	Zone            *Zone                        `gorm:"foreignKey:ZoneID"               json:"-"`
	Name            string                       `gorm:"type:varchar(100);not null"      json:"nombre"`
	Description     string                       `gorm:"type:text"                       json:"descripcion"`
	StartTime       TimeOfDay                    `gorm:"type:varchar(8);not null"        json:"horaInicio"`
	DurationMinutes int                          `gorm:"not null"                        json:"duracionMinutos"`
	Frequency       Frequency                    `gorm:"type:varchar(20);not null;index" json:"frecuencia"`
	Weekdays        datatypes.JSONSlice[Weekday] `                                       json:"diasSemana"`
	StartDate       datatypes.Date               `gorm:"not null"                        json:"fechaInicio"`
	EndDate         *datatypes.Date              `                                       json:"fechaFin"`
	Status          ScheduleStatus               `gorm:"type:varchar(20);not null"       json:"estado"`
	FlowRate        decimal.Decimal              `gorm:"type:decimal(10,2);not null"     json:"caudalLitrosMinuto"`
	Priority        int                          `gorm:"not null;index"                  json:"prioridad"`
	Active          bool                         `gorm:"type:bool;not null;index"        json:"activa"`
	History         []HistoryRecord              `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Schedule) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.StartTime = s.StartTime.Normalize()
	if s.Frequency == "" {
		s.Frequency = FrequencyDaily
	}
	if s.Status == "" {
		s.Status = ScheduleStatusActive
	}
	if s.Priority == 0 {
		s.Priority = SCHEDULE_DEFAULT_PRIORITY
	}
	if s.Weekdays == nil {
		s.Weekdays = datatypes.JSONSlice[Weekday]{}
	}
}

// TotalConsumption is duration times flow rate, in liters.
func (s *Schedule) TotalConsumption() decimal.Decimal {
	return decimal.NewFromInt(int64(s.DurationMinutes)).Mul(s.FlowRate)
}

// IsCurrent reports whether today falls inside the schedule's date range.
// It ignores the Active flag.
func (s *Schedule) IsCurrent(today time.Time) bool {
	day := dateOnly(today)
	if day.Before(dateOnly(time.Time(s.StartDate))) {
		return false
	}
	if s.EndDate != nil && day.After(dateOnly(time.Time(*s.EndDate))) {
		return false
	}
	return true
}

func (s *Schedule) HasEnded(today time.Time) bool {
	return s.EndDate != nil && dateOnly(today).After(dateOnly(time.Time(*s.EndDate)))
}

// Validate applies the field and cross field rules. When zone is non nil the
// total consumption is checked against its capacity.
func (s *Schedule) Validate(zone *Zone) error {
	verr := types.NewValidationError()

	if utf8.RuneCountInString(strings.TrimSpace(s.Name)) < SCHEDULE_NAME_MIN_LENGTH {
		verr.Add("nombre", "El nombre debe tener al menos 3 caracteres.")
	}

	if s.ZoneID == 0 {
		verr.Add("zona", "Este campo es obligatorio.")
	}

	if !s.StartTime.Valid() {
		verr.Add("horaInicio", "Formato de hora inválido, use HH:MM.")
	}

	switch {
	case s.DurationMinutes < SCHEDULE_MIN_DURATION:
		verr.Add("duracionMinutos", "La duración debe ser mayor que cero.")
	case s.DurationMinutes > SCHEDULE_MAX_DURATION:
		verr.Add("duracionMinutos", "La duración no puede ser mayor a 480 minutos (8 horas).")
	}

	if !s.FlowRate.IsPositive() {
		verr.Add("caudalLitrosMinuto", "El caudal debe ser mayor que cero.")
	} else if s.FlowRate.GreaterThan(ScheduleMaxFlowRate) {
		verr.Add("caudalLitrosMinuto", "El caudal no puede ser mayor a 1,000 litros por minuto.")
	}

	if s.Priority < SCHEDULE_MIN_PRIORITY || s.Priority > SCHEDULE_MAX_PRIORITY {
		verr.Add("prioridad", "La prioridad debe estar entre 1 y 10.")
	}

	if !s.Frequency.Valid() {
		verr.Add("frecuencia", "Opción inválida.")
	}
	if !s.Status.Valid() {
		verr.Add("estado", "Opción inválida.")
	}

	for _, day := range s.Weekdays {
		if !day.Valid() {
			verr.Add("diasSemana", fmt.Sprintf("Día de la semana inválido: %s.", day))
		}
	}
	if s.Frequency == FrequencyWeekly && len(s.Weekdays) == 0 {
		verr.Add(
			"diasSemana",
			"Debe especificar al menos un día de la semana para frecuencia semanal.",
		)
	}

	start := time.Time(s.StartDate)
	if start.IsZero() {
		verr.Add("fechaInicio", "La fecha de inicio es obligatoria.")
	} else if s.EndDate != nil && !dateOnly(time.Time(*s.EndDate)).After(dateOnly(start)) {
		verr.Add("fechaFin", "La fecha de fin debe ser posterior a la fecha de inicio.")
	}

	if zone != nil && s.DurationMinutes > 0 && s.FlowRate.IsPositive() {
		consumption := s.TotalConsumption()
		if consumption.GreaterThan(zone.WaterCapacity) {
			verr.Add("duracionMinutos", fmt.Sprintf(
				"El consumo total (%sL) supera la capacidad de la zona (%sL).",
				consumption.StringFixed(2),
				zone.WaterCapacity.StringFixed(2),
			))
		}
	}

	return verr.OrNil()
}

// CheckZoneActive rejects inactive zones for new or moved schedules.
func CheckZoneActive(zone *Zone) error {
	if zone == nil || !zone.Active {
		return types.DomainError(ErrMsgInactiveZone)
	}
	return nil
}

func (s *Schedule) BeforeSave(tx *gorm.DB) error {
	s.Normalize()

	zone := s.Zone
	if zone == nil || zone.ID != s.ZoneID {
		var loaded Zone
		if err := tx.Session(&gorm.Session{NewDB: true}).First(&loaded, s.ZoneID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.FieldError("zona", "La zona indicada no existe.")
			}
			return err
		}
		zone = &loaded
	}

	return s.Validate(zone)
}
