package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"riego/internal/database"
	"riego/internal/models"
	"riego/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fixture struct {
	db    database.DB
	repos repositories.Repository
	tx    *TransactionService
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	sql, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(sql, logger.New("test")))

	db := database.NewFromSQL(sql)
	t.Cleanup(func() { _ = db.Close() })

	return fixture{db: db, repos: repositories.New(db), tx: NewTransactionService(db)}
}

func (f fixture) zone(t *testing.T, name string, area, capacity int64, zoneType models.ZoneType) *models.Zone {
	t.Helper()

	zone := &models.Zone{
		Name:          name,
		Type:          zoneType,
		Status:        models.ZoneStatusActive,
		AreaM2:        decimal.NewFromInt(area),
		WaterCapacity: decimal.NewFromInt(capacity),
		Active:        true,
	}
	require.NoError(t, f.repos.Zone.Create(context.Background(), f.db.SQL, zone))
	return zone
}

func (f fixture) schedule(
	t *testing.T,
	zone *models.Zone,
	name string,
	duration int,
	flow int64,
	frequency models.Frequency,
) *models.Schedule {
	t.Helper()

	schedule := &models.Schedule{
		ZoneID:          zone.ID,
		Name:            name,
		StartTime:       "06:30",
		DurationMinutes: duration,
		Frequency:       frequency,
		StartDate:       datatypes.Date(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		Status:          models.ScheduleStatusActive,
		FlowRate:        decimal.NewFromInt(flow),
		Priority:        5,
		Active:          true,
	}
	if frequency == models.FrequencyWeekly {
		schedule.Weekdays = datatypes.JSONSlice[models.Weekday]{models.Monday}
	}
	require.NoError(t, f.repos.Schedule.Create(context.Background(), f.db.SQL, schedule))
	return schedule
}
