package events

import (
	"errors"
	"testing"
	"time"

	"riego/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_LocalDelivery(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	received := make(chan Event, 2)
	require.NoError(t, bus.Subscribe(IRRIGATION_CHANNEL, func(event Event) error {
		received <- event
		return nil
	}))
	require.NoError(t, bus.Subscribe(IRRIGATION_CHANNEL, func(event Event) error {
		return errors.New("handler failure does not stop delivery")
	}))

	require.NoError(t, bus.PublishIrrigation(IRRIGATION_SIMULATED, map[string]any{"programacion": 1}))

	select {
	case event := <-received:
		assert.Equal(t, IRRIGATION_SIMULATED, event.Type)
		assert.Equal(t, IRRIGATION_CHANNEL, event.Channel)
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
		assert.Equal(t, 1, event.Data["programacion"])
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}

	select {
	case <-received:
		t.Fatal("event delivered twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_OtherChannelNotNotified(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	received := make(chan Event, 1)
	require.NoError(t, bus.Subscribe("other", func(event Event) error {
		received <- event
		return nil
	}))

	require.NoError(t, bus.PublishIrrigation(READING_RECORDED, nil))

	select {
	case <-received:
		t.Fatal("unexpected delivery")
	case <-time.After(50 * time.Millisecond):
	}
}
