package readingController

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"riego/internal/events"
	. "riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/testsupport"
	"riego/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) ofType(messageType events.MessageType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []events.Event
	for _, event := range r.events {
		if event.Type == messageType {
			matched = append(matched, event)
		}
	}
	return matched
}

func newController(t *testing.T) (ReadingControllerInterface, testsupport.Env, *recorder) {
	env := testsupport.NewEnv(t)
	rec := &recorder{}
	require.NoError(t, env.EventBus.Subscribe(events.IRRIGATION_CHANNEL, rec.handle))
	return New(env.Repos, env.Services, env.EventBus, env.DB), env, rec
}

func thresholdSensor(t *testing.T, env testsupport.Env) *Sensor {
	zone := env.Zone(t, "Jardín Principal", 500, 25000, true)
	sensor := env.Sensor(t, zone, "HUM-001", SensorTypeHumidity)
	sensor.MinThreshold = testsupport.Ptr(decimal.NewFromInt(20))
	sensor.MaxThreshold = testsupport.Ptr(decimal.NewFromInt(80))
	require.NoError(t, env.Repos.Sensor.Update(context.Background(), env.DB.SQL, sensor))
	return sensor
}

func TestReadingController_Record(t *testing.T) {
	controller, env, rec := newController(t)
	ctx := context.Background()
	sensor := thresholdSensor(t, env)
	takenAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("updates the sensor and publishes", func(t *testing.T) {
		reading, err := controller.Record(ctx, ReadingRequest{
			SensorID: &sensor.ID,
			TakenAt:  &takenAt,
			Value:    testsupport.Ptr(decimal.NewFromInt(45)),
			Humidity: testsupport.Ptr(decimal.NewFromInt(45)),
		})
		require.NoError(t, err)
		assert.NotZero(t, reading.ID)

		stored, err := env.Repos.Sensor.GetByID(ctx, env.DB.SQL, sensor.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.CurrentValue)
		assert.True(t, decimal.NewFromInt(45).Equal(*stored.CurrentValue))

		assert.Eventually(t, func() bool {
			return len(rec.ofType(events.READING_RECORDED)) == 1
		}, time.Second, 10*time.Millisecond)
		assert.Empty(t, rec.ofType(events.THRESHOLD_EXCEEDED))
	})

	t.Run("value above threshold raises an alert", func(t *testing.T) {
		later := takenAt.Add(time.Hour)
		_, err := controller.Record(ctx, ReadingRequest{
			SensorID: &sensor.ID,
			TakenAt:  &later,
			Value:    testsupport.Ptr(decimal.NewFromInt(92)),
		})
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return len(rec.ofType(events.THRESHOLD_EXCEEDED)) == 1
		}, time.Second, 10*time.Millisecond)

		alert := rec.ofType(events.THRESHOLD_EXCEEDED)[0]
		assert.Equal(t, "92.00", alert.Data["valor"])
		assert.Equal(t, "80.00", alert.Data["umbralMaximo"])
		assert.Equal(t, "HUM-001", alert.Data["codigo"])
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := controller.Record(ctx, ReadingRequest{})
		var verr *types.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "sensor")
		assert.Contains(t, verr.Fields, "valor")
	})

	t.Run("humidity out of range", func(t *testing.T) {
		_, err := controller.Record(ctx, ReadingRequest{
			SensorID: &sensor.ID,
			Value:    testsupport.Ptr(decimal.NewFromInt(10)),
			Humidity: testsupport.Ptr(decimal.NewFromInt(120)),
		})
		var verr *types.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "humedad")
	})

	t.Run("unknown sensor", func(t *testing.T) {
		_, err := controller.Record(ctx, ReadingRequest{
			SensorID: testsupport.Ptr(9999),
			Value:    testsupport.Ptr(decimal.NewFromInt(10)),
		})
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestReadingController_Queries(t *testing.T) {
	controller, env, _ := newController(t)
	ctx := context.Background()
	sensor := thresholdSensor(t, env)

	var ids []int
	for day := 1; day <= 3; day++ {
		takenAt := time.Date(2025, 3, day, 8, 0, 0, 0, time.UTC)
		reading, err := controller.Record(ctx, ReadingRequest{
			SensorID: &sensor.ID,
			TakenAt:  &takenAt,
			Value:    testsupport.Ptr(decimal.NewFromInt(int64(30 + day))),
		})
		require.NoError(t, err)
		ids = append(ids, reading.ID)
	}

	t.Run("list newest first within range", func(t *testing.T) {
		from := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
		readings, err := controller.List(ctx, repositories.ReadingFilter{SensorID: &sensor.ID, From: &from})
		require.NoError(t, err)
		require.Len(t, readings, 2)
		assert.Equal(t, ids[2], readings[0].ID)
		assert.Equal(t, ids[1], readings[1].ID)
	})

	t.Run("get and delete", func(t *testing.T) {
		reading, err := controller.Get(ctx, ids[0])
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(31).Equal(reading.Value))

		require.NoError(t, controller.Delete(ctx, ids[0]))
		_, err = controller.Get(ctx, ids[0])
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}
