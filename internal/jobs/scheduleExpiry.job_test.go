package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"riego/config"
	"riego/internal/database"
	"riego/internal/events"
	"riego/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) CompleteEnded(ctx context.Context, tx *gorm.DB, today time.Time) (int64, error) {
	args := m.Called(ctx, tx, today)
	return args.Get(0).(int64), args.Error(1)
}

func newTransactionService(t *testing.T) (*services.TransactionService, sqlmock.Sqlmock) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	return services.NewTransactionService(database.NewFromSQL(gormDB)), sqlMock
}

func TestScheduleExpiryJob_Metadata(t *testing.T) {
	job := NewScheduleExpiryJob(nil, nil, nil, nil, services.Daily)
	assert.Equal(t, "DailyScheduleExpiry", job.Name())
	assert.Equal(t, services.Daily, job.Schedule())
}

func TestScheduleExpiryJob_Execute(t *testing.T) {
	transaction, sqlMock := newTransactionService(t)
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	today := time.Date(2025, 4, 1, 2, 0, 0, 0, time.UTC)
	completer := &mockCompleter{}
	completer.On("CompleteEnded", mock.Anything, mock.Anything, today).Return(int64(3), nil)

	bus := events.New(nil, config.Config{})
	received := make(chan events.Event, 1)
	require.NoError(t, bus.Subscribe(events.IRRIGATION_CHANNEL, func(event events.Event) error {
		received <- event
		return nil
	}))

	metrics := services.NewMetricsService()
	job := NewScheduleExpiryJob(completer, transaction, bus, metrics, services.Daily)
	job.now = func() time.Time { return today }

	require.NoError(t, job.Execute(context.Background()))

	completer.AssertExpectations(t)
	assert.NoError(t, sqlMock.ExpectationsWereMet())

	select {
	case event := <-received:
		assert.Equal(t, events.SCHEDULES_COMPLETED, event.Type)
		assert.Equal(t, int64(3), event.Data["completadas"])
	case <-time.After(time.Second):
		t.Fatal("expiry event not delivered")
	}
}

func TestScheduleExpiryJob_NothingToComplete(t *testing.T) {
	transaction, sqlMock := newTransactionService(t)
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	completer := &mockCompleter{}
	completer.On("CompleteEnded", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	job := NewScheduleExpiryJob(completer, transaction, nil, nil, services.Daily)
	assert.NoError(t, job.Execute(context.Background()))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestScheduleExpiryJob_RollsBackOnFailure(t *testing.T) {
	transaction, sqlMock := newTransactionService(t)
	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	failure := errors.New("database unavailable")
	completer := &mockCompleter{}
	completer.On("CompleteEnded", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), failure)

	job := NewScheduleExpiryJob(completer, transaction, nil, nil, services.Daily)
	err := job.Execute(context.Background())

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
