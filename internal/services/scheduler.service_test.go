package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name     string
	schedule Schedule
	runs     int
	err      error
}

func (j *countingJob) Name() string       { return j.name }
func (j *countingJob) Schedule() Schedule { return j.schedule }
func (j *countingJob) Execute(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestSchedulerService_AddAndRun(t *testing.T) {
	scheduler := NewSchedulerService()
	job := &countingJob{name: "daily", schedule: Daily}

	require.NoError(t, scheduler.AddJob(job))
	assert.Equal(t, 1, scheduler.GetJobCount())

	require.NoError(t, scheduler.RunJobByName(context.Background(), "daily"))
	assert.Equal(t, 1, job.runs)

	assert.Error(t, scheduler.RunJobByName(context.Background(), "missing"))
}

func TestSchedulerService_RunJobByName_PropagatesFailure(t *testing.T) {
	scheduler := NewSchedulerService()
	failure := errors.New("boom")
	require.NoError(t, scheduler.AddJob(&countingJob{name: "hourly", schedule: Hourly, err: failure}))

	err := scheduler.RunJobByName(context.Background(), "hourly")
	assert.ErrorIs(t, err, failure)
}

func TestSchedulerService_StartStop(t *testing.T) {
	scheduler := NewSchedulerService()
	require.NoError(t, scheduler.Start(context.Background()))
	assert.False(t, scheduler.IsRunning())

	require.NoError(t, scheduler.AddJob(&countingJob{name: "daily", schedule: Daily}))
	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, scheduler.IsRunning())

	require.NoError(t, scheduler.Stop(context.Background()))
	assert.False(t, scheduler.IsRunning())
}

func TestSchedulerService_UnknownSchedule(t *testing.T) {
	scheduler := NewSchedulerService()
	assert.Error(t, scheduler.AddJob(&countingJob{name: "odd", schedule: Schedule(9)}))
}
