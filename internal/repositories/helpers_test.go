package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"riego/internal/database"
	"riego/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, logger.New("test")))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func createZone(t *testing.T, db *gorm.DB, name string, area, capacity int64, active bool) *models.Zone {
	t.Helper()

	zone := &models.Zone{
		Name:          name,
		Type:          models.ZoneTypeGarden,
		Status:        models.ZoneStatusActive,
		AreaM2:        decimal.NewFromInt(area),
		WaterCapacity: decimal.NewFromInt(capacity),
		Active:        active,
	}
	require.NoError(t, NewZoneRepository(nil).Create(context.Background(), db, zone))
	return zone
}

func utcDate(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func createSchedule(
	t *testing.T,
	db *gorm.DB,
	zone *models.Zone,
	name string,
	priority int,
	startTime models.TimeOfDay,
) *models.Schedule {
	t.Helper()

	schedule := &models.Schedule{
		ZoneID:          zone.ID,
		Name:            name,
		StartTime:       startTime,
		DurationMinutes: 30,
		Frequency:       models.FrequencyDaily,
		StartDate:       utcDate(2025, 1, 1),
		Status:          models.ScheduleStatusActive,
		FlowRate:        decimal.NewFromInt(10),
		Priority:        priority,
		Active:          true,
	}
	require.NoError(t, NewScheduleRepository(nil).Create(context.Background(), db, schedule))
	return schedule
}

func createSensor(t *testing.T, db *gorm.DB, zone *models.Zone, code string) *models.Sensor {
	t.Helper()

	sensor := &models.Sensor{
		ZoneID: zone.ID,
		Code:   code,
		Type:   models.SensorTypeHumidity,
		Status: models.SensorStatusOperational,
		Unit:   "%",
		Active: true,
	}
	require.NoError(t, NewSensorRepository().Create(context.Background(), db, sensor))
	return sensor
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func boolPtr(value bool) *bool {
	return &value
}

func intPtr(value int) *int {
	return &value
}
