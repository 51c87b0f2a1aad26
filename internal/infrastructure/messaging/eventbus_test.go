package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deinadmin/school-grade-hub/internal/domain/shared"
)

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	var seen []shared.EventType
	err := bus.Subscribe(shared.EventGradeRecorded, func(_ context.Context, e shared.Event) error {
		seen = append(seen, e.EventType())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, shared.NewBaseEvent(shared.EventGradeRecorded, "g-1")))
	require.NoError(t, bus.Publish(ctx, shared.NewBaseEvent(shared.EventSubjectCreated, "sub-1")))

	// Only the subscribed type was delivered.
	assert.Equal(t, []shared.EventType{shared.EventGradeRecorded}, seen)
}

func TestEventBus_SubscribeAllSeesEveryEvent(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	count := 0
	require.NoError(t, bus.SubscribeAll(func(_ context.Context, _ shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, shared.NewBaseEvent(shared.EventSubjectCreated, "sub-1")))
	require.NoError(t, bus.Publish(ctx, shared.NewBaseEvent(shared.EventGradeDeleted, "g-1")))
	require.NoError(t, bus.Publish(ctx, shared.NewBaseEvent(shared.EventPeriodSelected, "")))

	assert.Equal(t, 3, count)
}

func TestEventBus_HandlerErrorDoesNotStarveOthers(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	called := false
	require.NoError(t, bus.SubscribeAll(func(_ context.Context, _ shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.SubscribeAll(func(_ context.Context, _ shared.Event) error {
		called = true
		return nil
	}))

	err := bus.Publish(ctx, shared.NewBaseEvent(shared.EventGradeRecorded, "g-1"))
	assert.Error(t, err)
	assert.True(t, called)
}

func TestEventBus_Closed(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	bus.Close()

	err := bus.Publish(context.Background(), shared.NewBaseEvent(shared.EventGradeRecorded, "g-1"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.SubscribeAll(func(_ context.Context, _ shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestEventBus_NilEvent(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	assert.ErrorIs(t, bus.Publish(context.Background(), nil), ErrNilEvent)
}
