package zoneController

import (
	"context"
	"errors"
	"testing"

	. "riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/testsupport"
	"riego/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T) (ZoneControllerInterface, testsupport.Env) {
	env := testsupport.NewEnv(t)
	return New(env.Repos, env.Services, env.DB), env
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func request(name string, area, capacity int64) ZoneRequest {
	return ZoneRequest{
		Name:          testsupport.Ptr(name),
		AreaM2:        testsupport.Ptr(decimal.NewFromInt(area)),
		WaterCapacity: testsupport.Ptr(decimal.NewFromInt(capacity)),
	}
}

func TestZoneController_Create(t *testing.T) {
	controller, _ := newController(t)
	ctx := context.Background()

	t.Run("defaults and derived values", func(t *testing.T) {
		zone, err := controller.Create(ctx, request("  Jardín Principal ", 500, 25000))
		require.NoError(t, err)

		assert.Equal(t, "Jardín Principal", zone.Name)
		assert.Equal(t, ZoneTypeGarden, zone.Type)
		assert.Equal(t, "Jardín", zone.TypeDisplay)
		assert.Equal(t, "Activa", zone.StatusDisplay)
		assert.True(t, zone.Active)
		assert.Equal(t, "50", zone.EstimatedConsumption.String())
	})

	t.Run("ratio above 100 is rejected", func(t *testing.T) {
		_, err := controller.Create(ctx, request("Zona Sobrecargada", 500, 60000))
		assert.Contains(t, validationFields(t, err), "capacidadAguaLitros")
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := controller.Create(ctx, request("Jardín Principal", 100, 1000))
		fields := validationFields(t, err)
		assert.Equal(t, []string{ErrMsgDuplicateName}, fields["nombre"])
	})

	t.Run("required fields", func(t *testing.T) {
		_, err := controller.Create(ctx, ZoneRequest{})
		fields := validationFields(t, err)
		assert.Contains(t, fields, "nombre")
		assert.Contains(t, fields, "areaM2")
		assert.Contains(t, fields, "capacidadAguaLitros")
	})
}

func TestZoneController_Update(t *testing.T) {
	controller, env := newController(t)
	ctx := context.Background()

	zone := env.Zone(t, "Huerto Sur", 100, 5000, true)
	env.Zone(t, "Césped Norte", 100, 5000, true)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := controller.Update(ctx, zone.ID, ZoneRequest{
			Location: testsupport.Ptr("Patio trasero"),
			Active:   testsupport.Ptr(false),
		}, true)
		require.NoError(t, err)

		assert.Equal(t, "Huerto Sur", updated.Name)
		assert.Equal(t, "Patio trasero", updated.Location)
		assert.False(t, updated.Active)
	})

	t.Run("full update requires every mandatory field", func(t *testing.T) {
		_, err := controller.Update(ctx, zone.ID, ZoneRequest{Name: testsupport.Ptr("Huerto Sur")}, false)
		assert.Contains(t, validationFields(t, err), "areaM2")
	})

	t.Run("renaming onto another zone", func(t *testing.T) {
		_, err := controller.Update(ctx, zone.ID, ZoneRequest{Name: testsupport.Ptr("Césped Norte")}, true)
		assert.Contains(t, validationFields(t, err), "nombre")
	})

	t.Run("keeping its own name is allowed", func(t *testing.T) {
		_, err := controller.Update(ctx, zone.ID, request("Huerto Sur", 100, 4000), false)
		assert.NoError(t, err)
	})

	t.Run("unknown zone", func(t *testing.T) {
		_, err := controller.Update(ctx, 999, ZoneRequest{}, true)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestZoneController_ListSummaryDelete(t *testing.T) {
	controller, env := newController(t)
	ctx := context.Background()

	garden := env.Zone(t, "Jardín Principal", 500, 25000, true)
	env.Zone(t, "Huerto Orgánico", 100, 2000, false)
	env.Schedule(t, garden, "Riego Mañana", 30, 10)

	zones, err := controller.List(ctx, repositories.ZoneFilter{Active: testsupport.Ptr(true)})
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Jardín Principal", zones[0].Name)

	summary, err := controller.Summary(ctx, garden.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jardín", summary.Zone.Type)
	assert.Equal(t, "Activa", summary.Zone.Status)
	assert.Equal(t, "No especificada", summary.Location)
	assert.Equal(t, "50", summary.WaterRatio.String())

	stats, err := controller.Statistics(ctx, repositories.ZoneFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Inactive)

	require.NoError(t, controller.Delete(ctx, garden.ID))
	_, err = controller.Get(ctx, garden.ID)
	assert.True(t, errors.Is(err, types.ErrNotFound))

	schedules, err := env.Repos.Schedule.List(ctx, env.DB.SQL, repositories.ScheduleFilter{})
	require.NoError(t, err)
	assert.Empty(t, schedules)

	assert.True(t, errors.Is(controller.Delete(ctx, garden.ID), types.ErrNotFound))
}
