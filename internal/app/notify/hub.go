package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Rooms clients can join. Joining is open: the channel carries display
// notifications only, never privileged data.
const (
	RoomAdmins  = "admins"
	RoomInterns = "interns"
)

type Event struct {
	Type string         `json:"type"`
	Room string         `json:"room"`
	Data map[string]any `json:"data,omitempty"`
}

// Bus is the room-scoped publish/subscribe surface. The redis
// implementation backs the running server; the memory one backs tests.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, room string) (<-chan Event, func())
}

type RedisBus struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisBus(rdb *redis.Client, prefix string) *RedisBus {
	return &RedisBus{rdb: rdb, prefix: prefix}
}

func (b *RedisBus) channel(room string) string {
	return b.prefix + ":" + room
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel(event.Room), payload).Err(); err != nil {
		return fmt.Errorf("publishing event to %s: %w", event.Room, err)
	}
	return nil
}

// Subscribe opens a per-client redis subscription. The returned cancel func
// must be called when the client disconnects.
func (b *RedisBus) Subscribe(ctx context.Context, room string) (<-chan Event, func()) {
	sub := b.rdb.Subscribe(ctx, b.channel(room))
	out := make(chan Event, 8)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Dropping malformed event on %s: %v", room, err)
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel
}

// MemoryBus is an in-process Bus used by tests.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string][]chan Event
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]chan Event)}
}

func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[event.Room] {
		select {
		case ch <- event:
		default: // slow subscriber, drop
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, room string) (<-chan Event, func()) {
	ch := make(chan Event, 8)
	b.mu.Lock()
	b.subs[room] = append(b.subs[room], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		chans := b.subs[room]
		for i, c := range chans {
			if c == ch {
				b.subs[room] = append(chans[:i], chans[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}
