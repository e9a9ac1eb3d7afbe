package models

import (
	"strings"
	"unicode/utf8"

	"riego/internal/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ZoneType string

const (
	ZoneTypeGarden          ZoneType = "jardin"
	ZoneTypeVegetableGarden ZoneType = "huerto"
	ZoneTypeLawn            ZoneType = "cesped"
	ZoneTypeCrop            ZoneType = "cultivo"
	ZoneTypeOrnamental      ZoneType = "ornamental"
)

var ZoneTypes = []ZoneType{
	ZoneTypeGarden,
	ZoneTypeVegetableGarden,
	ZoneTypeLawn,
	ZoneTypeCrop,
	ZoneTypeOrnamental,
}

var zoneTypeLabels = map[ZoneType]string{
	ZoneTypeGarden:          "Jardín",
	ZoneTypeVegetableGarden: "Huerto",
	ZoneTypeLawn:            "Césped",
	ZoneTypeCrop:            "Cultivo",
	ZoneTypeOrnamental:      "Ornamental",
}

func (t ZoneType) Label() string {
	return zoneTypeLabels[t]
}

func (t ZoneType) Valid() bool {
	_, ok := zoneTypeLabels[t]
	return ok
}

type ZoneStatus string

const (
	ZoneStatusActive      ZoneStatus = "activa"
	ZoneStatusInactive    ZoneStatus = "inactiva"
	ZoneStatusMaintenance ZoneStatus = "mantenimiento"
)

var ZoneStatuses = []ZoneStatus{ZoneStatusActive, ZoneStatusInactive, ZoneStatusMaintenance}

var zoneStatusLabels = map[ZoneStatus]string{
	ZoneStatusActive:      "Activa",
	ZoneStatusInactive:    "Inactiva",
	ZoneStatusMaintenance: "Mantenimiento",
}

func (s ZoneStatus) Label() string {
	return zoneStatusLabels[s]
}

func (s ZoneStatus) Valid() bool {
	_, ok := zoneStatusLabels[s]
	return ok
}

const (
	ZONE_NAME_MIN_LENGTH = 3
	ZONE_NAME_MAX_LENGTH = 100
	ZONE_FORBIDDEN_CHARS = `<>/\`
)

var (
	ZoneMaxArea       = decimal.NewFromInt(100000)
	ZoneMinWaterRatio = decimal.NewFromFloat(0.5)
	ZoneMaxWaterRatio = decimal.NewFromInt(100)
)

type Zone struct {
	BaseModel
	Name          string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"nombre"`
	Description   string          `gorm:"type:text"                              json:"descripcion"`
	Type          ZoneType        `gorm:"type:varchar(20);not null;index"        json:"tipoZona"`
	AreaM2        decimal.Decimal `gorm:"type:decimal(10,2);not null"            json:"areaM2"`
	WaterCapacity decimal.Decimal `gorm:"type:decimal(10,2);not null"            json:"capacidadAguaLitros"`
	Status        ZoneStatus      `gorm:"type:varchar(20);not null;index"        json:"estado"`
	Location      string          `gorm:"type:varchar(200)"                      json:"ubicacion"`
	Active        bool            `gorm:"type:bool;not null"                     json:"activa"`
	Schedules     []Schedule      `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE" json:"-"`
	Sensors       []Sensor        `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE" json:"-"`
}

func (z *Zone) Normalize() {
	z.Name = strings.TrimSpace(z.Name)
	if z.Type == "" {
		z.Type = ZoneTypeGarden
	}
	if z.Status == "" {
		z.Status = ZoneStatusActive
	}
}

// WaterRatio is liters of capacity per square meter, zero when the area is zero.
func (z *Zone) WaterRatio() decimal.Decimal {
	if z.AreaM2.IsZero() {
		return decimal.Zero
	}
	return z.WaterCapacity.Div(z.AreaM2)
}

func (z *Zone) Validate() error {
	verr := types.NewValidationError()

	name := strings.TrimSpace(z.Name)
	switch {
	case utf8.RuneCountInString(name) < ZONE_NAME_MIN_LENGTH:
		verr.Add("nombre", "El nombre debe tener al menos 3 caracteres.")
	case utf8.RuneCountInString(name) > ZONE_NAME_MAX_LENGTH:
		verr.Add("nombre", "El nombre no puede superar los 100 caracteres.")
	}
	if strings.ContainsAny(name, ZONE_FORBIDDEN_CHARS) {
		verr.Add("nombre", `El nombre no puede contener los caracteres: < > / \`)
	}

	if !z.Type.Valid() {
		verr.Add("tipoZona", "Opción inválida.")
	}
	if !z.Status.Valid() {
		verr.Add("estado", "Opción inválida.")
	}

	areaValid := true
	if !z.AreaM2.IsPositive() {
		verr.Add("areaM2", "El área debe ser mayor que cero.")
		areaValid = false
	} else if z.AreaM2.GreaterThan(ZoneMaxArea) {
		verr.Add("areaM2", "El área no puede ser mayor a 100,000 m².")
		areaValid = false
	}

	if z.WaterCapacity.IsNegative() {
		verr.Add("capacidadAguaLitros", "La capacidad de agua no puede ser negativa.")
	} else if areaValid {
		ratio := z.WaterRatio()
		if ratio.GreaterThan(ZoneMaxWaterRatio) {
			verr.Add(
				"capacidadAguaLitros",
				"La capacidad de agua es demasiado alta para el área especificada (máx. 100 L/m²).",
			)
		}
		if ratio.LessThan(ZoneMinWaterRatio) {
			verr.Add(
				"capacidadAguaLitros",
				"La capacidad de agua es demasiado baja para el área especificada (mín. 0.5 L/m²).",
			)
		}
	}

	return verr.OrNil()
}

func (z *Zone) BeforeSave(tx *gorm.DB) error {
	z.Normalize()
	return z.Validate()
}

// LocationOrDefault is used by summaries.
func (z *Zone) LocationOrDefault() string {
	if strings.TrimSpace(z.Location) == "" {
		return "No especificada"
	}
	return z.Location
}
