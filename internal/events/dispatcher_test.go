package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishFillsMetadata(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	var received Event
	d.Subscribe(EventUserRegistered, func(_ context.Context, event Event) error {
		received = event
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserRegistered, UserID: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, received.ID)
	assert.False(t, received.Timestamp.IsZero())
	assert.Equal(t, int64(1), received.UserID)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	var calls int
	d.Subscribe(EventUserDeleted, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(EventUserDeleted, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventUserDeleted}))
	assert.Equal(t, 2, calls)
}

func TestDispatcher_UnsubscribedTypeIsNoop(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTokenRefreshed}))
}
