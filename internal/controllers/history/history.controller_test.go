package historyController

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "riego/internal/models"
	"riego/internal/repositories"
	"riego/internal/testsupport"
	"riego/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newController(t *testing.T) (HistoryControllerInterface, testsupport.Env, *Schedule) {
	env := testsupport.NewEnv(t)
	zone := env.Zone(t, "Jardín Principal", 500, 25000, true)
	schedule := env.Schedule(t, zone, "Riego Mañana", 30, 10)
	return New(env.Repos, env.Services, env.DB), env, schedule
}

func request(scheduleID int, executedAt time.Time) HistoryRequest {
	return HistoryRequest{
		ScheduleID:            testsupport.Ptr(scheduleID),
		ExecutedAt:            &executedAt,
		ActualStartTime:       testsupport.Ptr("07:00"),
		ActualEndTime:         testsupport.Ptr("07:30"),
		ActualDurationMinutes: testsupport.Ptr(30),
		ActualFlowRate:        testsupport.Ptr(decimal.RequireFromString("9.5")),
	}
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func TestHistoryController_Create(t *testing.T) {
	controller, _, schedule := newController(t)
	ctx := context.Background()
	executedAt := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)

	t.Run("derives zone and consumption", func(t *testing.T) {
		record, err := controller.Create(ctx, request(schedule.ID, executedAt))
		require.NoError(t, err)

		assert.Equal(t, schedule.ZoneID, record.ZoneID)
		assert.Equal(t, "Jardín Principal", record.ZoneName)
		assert.Equal(t, "Riego Mañana", record.ScheduleName)
		assert.Equal(t, OutcomeSuccess, record.Outcome)
		assert.Equal(t, "Exitoso", record.OutcomeDisplay)
		assert.Equal(t, "07:00", record.ActualStartTime)
		require.NotNil(t, record.ActualEndTime)
		assert.Equal(t, "07:30", *record.ActualEndTime)
		assert.True(t, decimal.NewFromInt(285).Equal(record.TotalConsumption))
	})

	t.Run("explicit consumption and outcome", func(t *testing.T) {
		req := request(schedule.ID, executedAt.Add(24*time.Hour))
		req.TotalConsumption = testsupport.Ptr(decimal.NewFromInt(120))
		req.Outcome = testsupport.Ptr(OutcomePartial)

		record, err := controller.Create(ctx, req)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(120).Equal(record.TotalConsumption))
		assert.Equal(t, "Parcial", record.OutcomeDisplay)
	})

	t.Run("required fields", func(t *testing.T) {
		_, err := controller.Create(ctx, HistoryRequest{})
		fields := validationFields(t, err)
		for _, field := range []string{
			"programacion", "fechaEjecucion", "horaInicioReal", "duracionRealMinutos", "caudalRealLitrosMinuto",
		} {
			assert.Contains(t, fields, field)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		req := request(schedule.ID, executedAt)
		req.ActualEndTime = testsupport.Ptr("25:00")
		req.Outcome = testsupport.Ptr(IrrigationOutcome("cancelado"))
		req.Notes = strings.Repeat("a", MaxNotesLength+1)

		_, err := controller.Create(ctx, req)
		fields := validationFields(t, err)
		assert.Equal(t, []string{ErrMsgInvalidTime}, fields["horaFinReal"])
		assert.Equal(t, []string{ErrMsgNotesTooLong}, fields["observaciones"])
	})

	t.Run("unknown schedule", func(t *testing.T) {
		_, err := controller.Create(ctx, request(9999, executedAt))
		assert.Equal(t, []string{ErrMsgUnknownSchedule}, validationFields(t, err)["programacion"])
	})
}

func TestHistoryController_QueriesAndExport(t *testing.T) {
	controller, env, schedule := newController(t)
	ctx := context.Background()

	other := env.Schedule(t, env.Zone(t, "Césped Trasero", 300, 9000, true), "Riego Césped", 20, 5)

	first, err := controller.Create(ctx, request(schedule.ID, time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	second, err := controller.Create(ctx, request(schedule.ID, time.Date(2025, 3, 2, 7, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = controller.Create(ctx, request(other.ID, time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	t.Run("list newest first for a schedule", func(t *testing.T) {
		records, err := controller.List(ctx, repositories.HistoryFilter{ScheduleID: &schedule.ID})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, second.ID, records[0].ID)
		assert.Equal(t, first.ID, records[1].ID)
	})

	t.Run("get", func(t *testing.T) {
		record, err := controller.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Riego Mañana", record.ScheduleName)

		_, err = controller.Get(ctx, 9999)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})

	t.Run("export honours the filter", func(t *testing.T) {
		content, fileName, err := controller.Export(ctx, repositories.HistoryFilter{ZoneID: &other.ZoneID})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(fileName, "historial_riego_"))
		assert.True(t, strings.HasSuffix(fileName, ".xlsx"))

		f, err := excelize.OpenReader(bytes.NewReader(content))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Historial")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Riego Césped", rows[1][1])
	})
}
