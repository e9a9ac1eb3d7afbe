package seed

import (
	"testing"
	"time"

	. "riego/internal/models"
	"riego/internal/testsupport"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(t *testing.T, db *testsupport.Env, model any) int64 {
	t.Helper()
	var total int64
	require.NoError(t, db.DB.SQL.Model(model).Count(&total).Error)
	return total
}

func TestSeed(t *testing.T) {
	env := testsupport.Env{DB: testsupport.NewDB(t)}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Seed(env.DB.SQL, now, logger.New("seed_test")))

	assert.Equal(t, int64(1), count(t, &env, &User{}))
	assert.Equal(t, int64(4), count(t, &env, &Zone{}))
	assert.Equal(t, int64(5), count(t, &env, &Sensor{}))
	assert.Equal(t, int64(4), count(t, &env, &Schedule{}))
	assert.Equal(t, int64(4), count(t, &env, &HistoryRecord{}))

	var lawn Schedule
	require.NoError(t, env.DB.SQL.Where("name = ?", "Riego Césped Semanal").First(&lawn).Error)
	assert.Equal(t, FrequencyWeekly, lawn.Frequency)
	assert.ElementsMatch(t, []Weekday{Monday, Wednesday, Friday}, []Weekday(lawn.Weekdays))

	var partial HistoryRecord
	require.NoError(t, env.DB.SQL.Where("outcome = ?", OutcomePartial).First(&partial).Error)
	assert.Equal(t, lawn.ID, partial.ScheduleID)
	assert.Equal(t, lawn.ZoneID, partial.ZoneID)
	assert.True(t, partial.TotalConsumption.Equal(partial.ActualFlowRate.Mul(decimal.NewFromInt(int64(partial.ActualDurationMinutes)))))
}

func TestSeed_SkipsWhenZonesExist(t *testing.T) {
	env := testsupport.Env{DB: testsupport.NewDB(t)}
	log := logger.New("seed_test")
	now := time.Now()

	require.NoError(t, Seed(env.DB.SQL, now, log))
	require.NoError(t, Seed(env.DB.SQL, now, log))

	assert.Equal(t, int64(4), count(t, &env, &Zone{}))
	assert.Equal(t, int64(1), count(t, &env, &User{}))
}
