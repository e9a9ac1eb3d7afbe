package seed

import (
	"time"

	. "riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DEMO_USERNAME = "demo"
	DEMO_EMAIL    = "demo@riego.local"
	DEMO_PASSWORD = "riego-demo"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	parsed := dec(value)
	return &parsed
}

func date(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func datePtr(year int, month time.Month, day int) *datatypes.Date {
	d := date(year, month, day)
	return &d
}

func timePtr(value TimeOfDay) *TimeOfDay {
	return &value
}

// Seed loads the demo garden: four zones, five sensors, four schedules and a
// few days of history relative to now. It does nothing when zones exist.
func Seed(db *gorm.DB, now time.Time, log logger.Logger) error {
	log = log.Function("Seed")

	var existing int64
	if err := db.Model(&Zone{}).Count(&existing).Error; err != nil {
		return log.Err("failed to count zones", err)
	}
	if existing > 0 {
		log.Info("Database already seeded, skipping", "zones", existing)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := &User{Username: DEMO_USERNAME, Email: DEMO_EMAIL, IsActive: true}
		if err := user.SetPassword(DEMO_PASSWORD); err != nil {
			return log.Err("failed to hash demo password", err)
		}
		if err := tx.Create(user).Error; err != nil {
			return log.Err("failed to create demo user", err)
		}

		zones := seedZones()
		if err := tx.Create(&zones).Error; err != nil {
			return log.Err("failed to create zones", err)
		}
		garden, vegetables, lawn := zones[0], zones[1], zones[2]
		log.Info("Seeded zones", "count", len(zones))

		sensors := seedSensors(garden, vegetables, lawn, now)
		if err := tx.Create(&sensors).Error; err != nil {
			return log.Err("failed to create sensors", err)
		}
		log.Info("Seeded sensors", "count", len(sensors))

		schedules := seedSchedules(garden, vegetables, lawn)
		if err := tx.Create(&schedules).Error; err != nil {
			return log.Err("failed to create schedules", err)
		}
		log.Info("Seeded schedules", "count", len(schedules))

		history := seedHistory(schedules, now)
		if err := tx.Create(&history).Error; err != nil {
			return log.Err("failed to create history", err)
		}
		log.Info("Seeded history", "count", len(history))

		return nil
	})
}

func seedZones() []Zone {
	return []Zone{
		{
			Name:          "Jardín Principal",
			Description:   "Jardín frontal con flores ornamentales",
			Type:          ZoneTypeGarden,
			AreaM2:        dec("500.00"),
			WaterCapacity: dec("25000.00"),
			Status:        ZoneStatusActive,
			Location:      "Frontal Norte",
			Active:        true,
		},
		{
			Name:          "Huerto Orgánico",
			Description:   "Huerto con vegetales y hortalizas",
			Type:          ZoneTypeVegetableGarden,
			AreaM2:        dec("300.00"),
			WaterCapacity: dec("15000.00"),
			Status:        ZoneStatusActive,
			Location:      "Lateral Este",
			Active:        true,
		},
		{
			Name:          "Césped Sur",
			Description:   "Área de césped para recreación",
			Type:          ZoneTypeLawn,
			AreaM2:        dec("400.00"),
			WaterCapacity: dec("20000.00"),
			Status:        ZoneStatusActive,
			Location:      "Parte Sur",
			Active:        true,
		},
		{
			Name:          "Cultivo Temporal",
			Description:   "Área para cultivos estacionales",
			Type:          ZoneTypeCrop,
			AreaM2:        dec("200.00"),
			WaterCapacity: dec("10000.00"),
			Status:        ZoneStatusMaintenance,
			Location:      "Oeste",
			Active:        false,
		},
	}
}

func seedSensors(garden, vegetables, lawn Zone, now time.Time) []Sensor {
	readAt := now.UTC()
	sensor := func(zone Zone, code string, kind SensorType, brand, model, value, unit, low, high string, installed *datatypes.Date) Sensor {
		return Sensor{
			ZoneID:        zone.ID,
			Code:          code,
			Type:          kind,
			Brand:         brand,
			ModelName:     model,
			Status:        SensorStatusOperational,
			CurrentValue:  decPtr(value),
			Unit:          unit,
			MinThreshold:  decPtr(low),
			MaxThreshold:  decPtr(high),
			InstalledOn:   installed,
			LastReadingAt: &readAt,
			Active:        true,
		}
	}

	return []Sensor{
		sensor(garden, "HUME-001", SensorTypeHumidity, "DHT22", "Pro", "45.50", "%", "30.00", "80.00", datePtr(2025, 1, 15)),
		sensor(garden, "TEMP-001", SensorTypeTemperature, "DS18B20", "Standard", "22.30", "°C", "10.00", "35.00", datePtr(2025, 1, 15)),
		sensor(vegetables, "HUME-002", SensorTypeHumidity, "DHT22", "Pro", "55.00", "%", "40.00", "85.00", datePtr(2025, 2, 1)),
		sensor(lawn, "CAUD-001", SensorTypeFlow, "YF-S201", "Flow", "8.50", "L/min", "5.00", "15.00", datePtr(2025, 3, 10)),
		sensor(vegetables, "LLUV-001", SensorTypeRain, "RainSensor", "V2", "0.00", "mm", "0.00", "50.00", datePtr(2025, 2, 15)),
	}
}

func seedSchedules(garden, vegetables, lawn Zone) []Schedule {
	return []Schedule{
		{
			ZoneID:          garden.ID,
			Name:            "Riego Mañana Jardín",
			Description:     "Riego diario matutino para el jardín principal",
			StartTime:       "07:00:00",
			DurationMinutes: 45,
			Frequency:       FrequencyDaily,
			Weekdays:        datatypes.JSONSlice[Weekday]{},
			StartDate:       date(2025, 1, 1),
			Status:          ScheduleStatusActive,
			FlowRate:        dec("10.00"),
			Priority:        7,
			Active:          true,
		},
		{
			ZoneID:          vegetables.ID,
			Name:            "Riego Huerto Tarde",
			Description:     "Riego para el huerto orgánico en la tarde",
			StartTime:       "18:30:00",
			DurationMinutes: 60,
			Frequency:       FrequencyDaily,
			Weekdays:        datatypes.JSONSlice[Weekday]{},
			StartDate:       date(2025, 1, 1),
			Status:          ScheduleStatusActive,
			FlowRate:        dec("8.00"),
			Priority:        9,
			Active:          true,
		},
		{
			ZoneID:          lawn.ID,
			Name:            "Riego Césped Semanal",
			Description:     "Riego semanal del césped (Lunes, Miércoles, Viernes)",
			StartTime:       "06:30:00",
			DurationMinutes: 30,
			Frequency:       FrequencyWeekly,
			Weekdays:        datatypes.JSONSlice[Weekday]{Monday, Wednesday, Friday},
			StartDate:       date(2025, 1, 1),
			Status:          ScheduleStatusActive,
			FlowRate:        dec("12.00"),
			Priority:        5,
			Active:          true,
		},
		{
			ZoneID:          garden.ID,
			Name:            "Riego Nocturno Jardín",
			Description:     "Riego adicional nocturno en verano",
			StartTime:       "22:00:00",
			DurationMinutes: 30,
			Frequency:       FrequencyWeekly,
			Weekdays:        datatypes.JSONSlice[Weekday]{Tuesday, Thursday, Saturday},
			StartDate:       date(2025, 11, 1),
			EndDate:         datePtr(2026, 3, 31),
			Status:          ScheduleStatusActive,
			FlowRate:        dec("9.00"),
			Priority:        4,
			Active:          true,
		},
	}
}

func seedHistory(schedules []Schedule, now time.Time) []HistoryRecord {
	morning, evening, lawn := schedules[0], schedules[1], schedules[2]
	now = now.UTC()

	record := func(
		schedule Schedule,
		ago time.Duration,
		start, end TimeOfDay,
		minutes int,
		flow, total string,
		outcome IrrigationOutcome,
		notes, temperature, before, after string,
	) HistoryRecord {
		return HistoryRecord{
			ScheduleID:            schedule.ID,
			ZoneID:                schedule.ZoneID,
			ExecutedAt:            now.Add(-ago),
			ActualStartTime:       start,
			ActualEndTime:         timePtr(end),
			ActualDurationMinutes: minutes,
			ActualFlowRate:        dec(flow),
			TotalConsumption:      dec(total),
			Outcome:               outcome,
			Notes:                 notes,
			AmbientTemperature:    decPtr(temperature),
			SoilMoistureBefore:    decPtr(before),
			SoilMoistureAfter:     decPtr(after),
		}
	}

	return []HistoryRecord{
		record(morning, 41*time.Hour, "07:00:00", "07:45:00", 45, "10.00", "450.00",
			OutcomeSuccess, "Riego completado sin incidencias", "22.50", "35.00", "75.00"),
		record(evening, 29*time.Hour+30*time.Minute, "18:30:00", "19:30:00", 60, "8.00", "480.00",
			OutcomeSuccess, "Riego óptimo, buena absorción", "25.00", "42.00", "82.00"),
		record(lawn, 65*time.Hour+30*time.Minute, "06:30:00", "06:50:00", 20, "12.00", "240.00",
			OutcomePartial, "Riego interrumpido por baja presión de agua", "20.00", "38.00", "55.00"),
		record(morning, 4*time.Hour, "07:00:00", "07:45:00", 45, "10.00", "450.00",
			OutcomeSuccess, "Riego de hoy completado exitosamente", "21.00", "40.00", "78.00"),
	}
}
