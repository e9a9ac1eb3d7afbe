// Package testsupport builds in-memory databases and fixtures for package
// tests.
package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"riego/config"
	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type Env struct {
	Config   config.Config
	DB       database.DB
	Repos    repositories.Repository
	Services services.Service
	EventBus *events.EventBus
}

func Config() config.Config {
	return config.Config{
		Environment:             "test",
		ServerPort:              8288,
		DatabaseDriver:          config.DRIVER_SQLITE,
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   15,
		RefreshTokenTTLHours:    24,
		PasswordResetTTLMinutes: 30,
		StatsCacheTTLSeconds:    60,
		CorsAllowOrigins:        "*",
	}
}

// NewDB opens a private in-memory SQLite database with every model migrated.
func NewDB(t testing.TB) database.DB {
	t.Helper()

	sql, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(sql, logger.New("testsupport")))

	db := database.NewFromSQL(sql)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func NewEnv(t testing.TB) Env {
	t.Helper()

	cfg := Config()
	db := NewDB(t)
	bus := events.New(nil, cfg)
	t.Cleanup(func() { _ = bus.Close() })

	svc, err := services.New(db, cfg, bus)
	require.NoError(t, err)

	return Env{
		Config:   cfg,
		DB:       db,
		Repos:    repositories.New(db),
		Services: svc,
		EventBus: bus,
	}
}

func Date(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (e Env) Zone(t testing.TB, name string, area, capacity int64, active bool) *models.Zone {
	t.Helper()

	zone := &models.Zone{
		Name:          name,
		Type:          models.ZoneTypeGarden,
		Status:        models.ZoneStatusActive,
		AreaM2:        decimal.NewFromInt(area),
		WaterCapacity: decimal.NewFromInt(capacity),
		Active:        active,
	}
	require.NoError(t, e.Repos.Zone.Create(context.Background(), e.DB.SQL, zone))
	return zone
}

func (e Env) Schedule(t testing.TB, zone *models.Zone, name string, duration int, flow int64) *models.Schedule {
	t.Helper()

	schedule := &models.Schedule{
		ZoneID:          zone.ID,
		Name:            name,
		StartTime:       "07:00",
		DurationMinutes: duration,
		Frequency:       models.FrequencyDaily,
		StartDate:       Date(2025, 1, 1),
		Status:          models.ScheduleStatusActive,
		FlowRate:        decimal.NewFromInt(flow),
		Priority:        5,
		Active:          true,
	}
	require.NoError(t, e.Repos.Schedule.Create(context.Background(), e.DB.SQL, schedule))
	return schedule
}

func (e Env) Sensor(t testing.TB, zone *models.Zone, code string, sensorType models.SensorType) *models.Sensor {
	t.Helper()

	sensor := &models.Sensor{
		ZoneID: zone.ID,
		Code:   code,
		Type:   sensorType,
		Status: models.SensorStatusOperational,
		Unit:   "%",
		Active: true,
	}
	require.NoError(t, e.Repos.Sensor.Create(context.Background(), e.DB.SQL, sensor))
	return sensor
}

func (e Env) User(t testing.TB, username, email, password string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Email: email, IsActive: true}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, e.Repos.User.Create(context.Background(), e.DB.SQL, user))
	return user
}

func Ptr[T any](value T) *T {
	return &value
}
