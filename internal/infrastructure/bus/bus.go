// Package bus is the process-wide notification channel. It replaces the
// ambient DOM events the console previously relied on with an explicit
// typed publish/subscribe service injected into whatever needs it.
// Delivery is synchronous, in-process and best-effort: no persistence,
// no replay, and a slow subscriber blocks the publisher.
package bus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/ports"
)

type Bus struct {
	log zerolog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[ports.Event]map[int]func(any)
}

func New(log zerolog.Logger) *Bus {
	return &Bus{log: log, subs: make(map[ports.Event]map[int]func(any))}
}

// Publish delivers the payload to every current subscriber of the event,
// synchronously, in unspecified order.
func (b *Bus) Publish(event ports.Event, payload any) {
	b.mu.Lock()
	fns := make([]func(any), 0, len(b.subs[event]))
	for _, fn := range b.subs[event] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	b.log.Debug().Str("event", string(event)).Int("subscribers", len(fns)).Msg("bus publish")
	for _, fn := range fns {
		fn(payload)
	}
}

// Subscribe registers fn for the event. The returned unsubscribe is
// idempotent and safe to call from within a delivery.
func (b *Bus) Subscribe(event ports.Event, fn func(payload any)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[event] == nil {
		b.subs[event] = make(map[int]func(any))
	}
	b.subs[event][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[event], id)
			b.mu.Unlock()
		})
	}
}
