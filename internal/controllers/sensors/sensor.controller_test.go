package sensorController

import (
	"context"
	"errors"
	"testing"
	"time"

	. "riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/testsupport"
	"riego/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T) (SensorControllerInterface, testsupport.Env) {
	env := testsupport.NewEnv(t)
	return New(env.Repos, env.Services, env.DB), env
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func request(zoneID int, code string) SensorRequest {
	return SensorRequest{
		ZoneID: testsupport.Ptr(zoneID),
		Code:   testsupport.Ptr(code),
		Type:   testsupport.Ptr(SensorTypeHumidity),
	}
}

func TestSensorController_Create(t *testing.T) {
	controller, env := newController(t)
	ctx := context.Background()
	zone := env.Zone(t, "Jardín Principal", 500, 25000, true)

	t.Run("normalizes code and applies defaults", func(t *testing.T) {
		req := request(zone.ID, " hum-001 ")
		req.InstalledOn = testsupport.Ptr("2024-03-15")

		sensor, err := controller.Create(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, "HUM-001", sensor.Code)
		assert.Equal(t, SensorStatusOperational, sensor.Status)
		assert.Equal(t, "Operativo", sensor.StatusDisplay)
		assert.Equal(t, "Humedad", sensor.TypeDisplay)
		assert.True(t, sensor.Active)
		require.NotNil(t, sensor.InstalledOn)
		assert.Equal(t, "2024-03-15", *sensor.InstalledOn)
	})

	t.Run("duplicate code ignores case", func(t *testing.T) {
		_, err := controller.Create(ctx, request(zone.ID, "HUM-001"))
		assert.Equal(t, []string{ErrMsgDuplicateCode}, validationFields(t, err)["codigo"])
	})

	t.Run("required fields", func(t *testing.T) {
		_, err := controller.Create(ctx, SensorRequest{})
		fields := validationFields(t, err)
		assert.Contains(t, fields, "zona")
		assert.Contains(t, fields, "codigo")
		assert.Contains(t, fields, "tipoSensor")
	})

	t.Run("thresholds out of order", func(t *testing.T) {
		req := request(zone.ID, "HUM-010")
		req.MinThreshold = testsupport.Ptr(decimal.NewFromInt(80))
		req.MaxThreshold = testsupport.Ptr(decimal.NewFromInt(20))

		_, err := controller.Create(ctx, req)
		assert.Contains(t, validationFields(t, err), "umbralMinimo")
	})

	t.Run("unknown zone", func(t *testing.T) {
		_, err := controller.Create(ctx, request(9999, "HUM-404"))
		assert.Equal(t, []string{ErrMsgUnknownZone}, validationFields(t, err)["zona"])
	})

	t.Run("malformed install date", func(t *testing.T) {
		req := request(zone.ID, "HUM-011")
		req.InstalledOn = testsupport.Ptr("15-03-2024")

		_, err := controller.Create(ctx, req)
		assert.Equal(t, []string{types.MSG_INVALID_DATE}, validationFields(t, err)["fechaInstalacion"])
	})
}

func TestSensorController_Update(t *testing.T) {
	controller, env := newController(t)
	ctx := context.Background()
	zone := env.Zone(t, "Jardín Principal", 500, 25000, true)
	sensor := env.Sensor(t, zone, "HUM-001", SensorTypeHumidity)
	env.Sensor(t, zone, "TEMP-001", SensorTypeTemperature)

	t.Run("partial update", func(t *testing.T) {
		updated, err := controller.Update(ctx, sensor.ID, SensorRequest{
			Status: testsupport.Ptr(SensorStatusMaintenance),
			Brand:  testsupport.Ptr("Decagon"),
		}, true)
		require.NoError(t, err)
		assert.Equal(t, SensorStatusMaintenance, updated.Status)
		assert.Equal(t, "Decagon", updated.Brand)
		assert.Equal(t, "HUM-001", updated.Code)
	})

	t.Run("code taken by another sensor", func(t *testing.T) {
		_, err := controller.Update(ctx, sensor.ID, SensorRequest{Code: testsupport.Ptr("temp-001")}, true)
		assert.Contains(t, validationFields(t, err), "codigo")
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := controller.Update(ctx, sensor.ID, SensorRequest{
			Status: testsupport.Ptr(SensorStatus("perdido")),
		}, true)
		assert.Contains(t, validationFields(t, err), "estado")
	})

	t.Run("unknown sensor", func(t *testing.T) {
		_, err := controller.Update(ctx, 9999, SensorRequest{}, true)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestSensorController_Statistics(t *testing.T) {
	controller, env := newController(t)
	ctx := context.Background()
	zone := env.Zone(t, "Jardín Principal", 500, 25000, true)
	sensor := env.Sensor(t, zone, "HUM-001", SensorTypeHumidity)
	empty := env.Sensor(t, zone, "HUM-002", SensorTypeHumidity)

	for day, humidity := range []int64{40, 50, 60} {
		value := decimal.NewFromInt(humidity)
		require.NoError(t, env.Repos.Sensor.RecordReading(ctx, env.DB.SQL, &Reading{
			SensorID: sensor.ID,
			TakenAt:  time.Date(2025, 3, day+1, 8, 0, 0, 0, time.UTC),
			Value:    value,
			Humidity: &value,
		}))
	}

	t.Run("whole range", func(t *testing.T) {
		stats, err := controller.Statistics(ctx, sensor.ID, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, sensor.ID, stats.SensorID)
		require.NotNil(t, stats.AverageHumidity)
		assert.True(t, decimal.NewFromInt(50).Equal(*stats.AverageHumidity))
	})

	t.Run("bounded range", func(t *testing.T) {
		from := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
		stats, err := controller.Statistics(ctx, sensor.ID, &from, nil)
		require.NoError(t, err)
		require.NotNil(t, stats.AverageHumidity)
		assert.True(t, decimal.NewFromInt(55).Equal(*stats.AverageHumidity))
	})

	t.Run("no readings yields null", func(t *testing.T) {
		stats, err := controller.Statistics(ctx, empty.ID, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, stats.AverageHumidity)
	})

	t.Run("unknown sensor", func(t *testing.T) {
		_, err := controller.Statistics(ctx, 9999, nil, nil)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})

	t.Run("list and delete", func(t *testing.T) {
		sensors, err := controller.List(ctx, repositories.SensorFilter{ZoneID: &zone.ID})
		require.NoError(t, err)
		assert.Len(t, sensors, 2)

		require.NoError(t, controller.Delete(ctx, sensor.ID))
		readings, err := env.Repos.Reading.List(ctx, env.DB.SQL, repositories.ReadingFilter{SensorID: &sensor.ID})
		require.NoError(t, err)
		assert.Empty(t, readings)
	})
}
