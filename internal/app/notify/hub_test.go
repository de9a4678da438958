package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed before an event arrived")
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestMemoryBusDeliversToRoom(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	admins, cancelAdmins := bus.Subscribe(ctx, RoomAdmins)
	defer cancelAdmins()
	interns, cancelInterns := bus.Subscribe(ctx, RoomInterns)
	defer cancelInterns()

	err := bus.Publish(ctx, Event{
		Type: "task-status-changed",
		Room: RoomAdmins,
		Data: map[string]any{"taskId": "t1"},
	})
	require.NoError(t, err)

	event := recvEvent(t, admins)
	assert.Equal(t, "task-status-changed", event.Type)
	assert.Equal(t, "t1", event.Data["taskId"])

	select {
	case leaked := <-interns:
		t.Fatalf("event leaked across rooms: %+v", leaked)
	default:
	}
}

func TestMemoryBusFanOut(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	first, cancelFirst := bus.Subscribe(ctx, RoomInterns)
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe(ctx, RoomInterns)
	defer cancelSecond()

	require.NoError(t, bus.Publish(ctx, Event{Type: "task-assigned", Room: RoomInterns}))

	assert.Equal(t, "task-assigned", recvEvent(t, first).Type)
	assert.Equal(t, "task-assigned", recvEvent(t, second).Type)
}

func TestMemoryBusCancelClosesChannel(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	ch, cancel := bus.Subscribe(ctx, RoomAdmins)
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after cancel must not reach the removed subscriber.
	require.NoError(t, bus.Publish(ctx, Event{Type: "project-deleted", Room: RoomAdmins}))
}

func TestMemoryBusDropsSlowSubscriber(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	ch, cancel := bus.Subscribe(ctx, RoomAdmins)
	defer cancel()

	// Fill the buffer and keep going; a full subscriber never blocks Publish.
	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(ctx, Event{Type: "task-assigned", Room: RoomAdmins}))
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
		default:
			assert.Greater(t, drained, 0)
			assert.LessOrEqual(t, drained, 8)
			return
		}
	}
}
