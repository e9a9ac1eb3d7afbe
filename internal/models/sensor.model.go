package models

import (
	"strings"
	"time"

	"riego/internal/types"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SensorType string

const (
	SensorTypeHumidity    SensorType = "humedad"
	SensorTypeTemperature SensorType = "temperatura"
	SensorTypeFlow        SensorType = "caudal"
	SensorTypeRain        SensorType = "lluvia"
)

var sensorTypeLabels = map[SensorType]string{
	SensorTypeHumidity:    "Humedad",
	SensorTypeTemperature: "Temperatura",
	SensorTypeFlow:        "Caudal",
	SensorTypeRain:        "Lluvia",
}

func (t SensorType) Label() string {
	return sensorTypeLabels[t]
}

func (t SensorType) Valid() bool {
	_, ok := sensorTypeLabels[t]
	return ok
}

type SensorStatus string

const (
	SensorStatusOperational SensorStatus = "operativo"
	SensorStatusMaintenance SensorStatus = "mantenimiento"
	SensorStatusBroken      SensorStatus = "averiado"
	SensorStatusInactive    SensorStatus = "inactivo"
)

var sensorStatusLabels = map[SensorStatus]string{
	SensorStatusOperational: "Operativo",
	SensorStatusMaintenance: "Mantenimiento",
	SensorStatusBroken:      "Averiado",
	SensorStatusInactive:    "Inactivo",
}

func (s SensorStatus) Label() string {
	return sensorStatusLabels[s]
}

func (s SensorStatus) Valid() bool {
	_, ok := sensorStatusLabels[s]
	return ok
}

type Sensor struct {
	BaseModel
	ZoneID        int              `gorm:"not null;index"                        json:"zona"`
	Zone          *Zone            `gorm:"foreignKey:ZoneID"                     json:"-"`
	Code          string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"codigo"`
	Type          SensorType       `gorm:"type:varchar(20);not null;index"       json:"tipoSensor"`
	Brand         string           `gorm:"type:varchar(100)"                     json:"marca"`
	ModelName     string           `gorm:"column:model;type:varchar(100)"        json:"modelo"`
	Status        SensorStatus     `gorm:"type:varchar(20);not null"             json:"estado"`
	CurrentValue  *decimal.Decimal `gorm:"type:decimal(10,2)"                    json:"valorActual"`
	Unit          string           `gorm:"type:varchar(20)"                      json:"unidadMedida"`
	MinThreshold  *decimal.Decimal `gorm:"type:decimal(10,2)"                    json:"umbralMinimo"`
	MaxThreshold  *decimal.Decimal `gorm:"type:decimal(10,2)"                    json:"umbralMaximo"`
	InstalledOn   *datatypes.Date  `                                             json:"fechaInstalacion"`
	LastReadingAt *time.Time       `                                             json:"ultimaLectura"`
	Active        bool             `gorm:"type:bool;not null"                    json:"activo"`
	Readings      []Reading        `gorm:"foreignKey:SensorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Sensor) Normalize() {
	s.Code = strings.ToUpper(strings.TrimSpace(s.Code))
	if s.Status == "" {
		s.Status = SensorStatusOperational
	}
}

func (s *Sensor) Validate() error {
	verr := types.NewValidationError()

	if s.ZoneID == 0 {
		verr.Add("zona", "Este campo es obligatorio.")
	}
	if strings.TrimSpace(s.Code) == "" {
		verr.Add("codigo", "Este campo es obligatorio.")
	}
	if !s.Type.Valid() {
		verr.Add("tipoSensor", "Opción inválida.")
	}
	if !s.Status.Valid() {
		verr.Add("estado", "Opción inválida.")
	}
	if s.MinThreshold != nil && s.MaxThreshold != nil && s.MinThreshold.GreaterThan(*s.MaxThreshold) {
		verr.Add("umbralMinimo", "El umbral mínimo no puede ser mayor que el máximo.")
	}

	return verr.OrNil()
}

// OutOfRange reports whether value lies outside the configured thresholds.
func (s *Sensor) OutOfRange(value decimal.Decimal) bool {
	if s.MinThreshold != nil && value.LessThan(*s.MinThreshold) {
		return true
	}
	if s.MaxThreshold != nil && value.GreaterThan(*s.MaxThreshold) {
		return true
	}
	return false
}

func (s *Sensor) BeforeSave(tx *gorm.DB) error {
	s.Normalize()
	return s.Validate()
}

// Reading is one measurement taken by a sensor.
type Reading struct {
	BaseModel
	SensorID    int              `gorm:"not null;index:idx_reading_sensor_taken_at,priority:1" json:"sensor"`
	Sensor      *Sensor          `gorm:"foreignKey:SensorID"                                   json:"-"`
	TakenAt     time.Time        `gorm:"not null;index:idx_reading_sensor_taken_at,priority:2" json:"fechaHora"`
	Value       decimal.Decimal  `gorm:"type:decimal(10,2);not null"                           json:"valor"`
	Humidity    *decimal.Decimal `gorm:"type:decimal(5,2)"                                     json:"humedad"`
	Temperature *decimal.Decimal `gorm:"type:decimal(5,2)"                                     json:"temperatura"`
}

func (r *Reading) Validate() error {
	verr := types.NewValidationError()

	if r.SensorID == 0 {
		verr.Add("sensor", "Este campo es obligatorio.")
	}
	if r.TakenAt.IsZero() {
		verr.Add("fechaHora", "Este campo es obligatorio.")
	}
	if r.Humidity != nil && (r.Humidity.IsNegative() || r.Humidity.GreaterThan(decimal.NewFromInt(100))) {
		verr.Add("humedad", "La humedad debe estar entre 0 y 100.")
	}

	return verr.OrNil()
}

func (r *Reading) BeforeSave(tx *gorm.DB) error {
	return r.Validate()
}
