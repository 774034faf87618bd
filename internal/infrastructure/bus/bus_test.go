package bus

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/ports"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	b := New(zerolog.Nop())

	got := 0
	b.Subscribe(ports.EventNewChat, func(any) { got++ })
	b.Subscribe(ports.EventNewChat, func(any) { got++ })
	b.Subscribe(ports.EventSessionExpired, func(any) { got += 100 })

	b.Publish(ports.EventNewChat, ports.NewChat{ProfileID: "p1"})

	if got != 2 {
		t.Fatalf("expected both chat.new subscribers and no others, got %d", got)
	}
}

func TestBus_PayloadDeliveredIntact(t *testing.T) {
	b := New(zerolog.Nop())

	var received ports.NewChat
	b.Subscribe(ports.EventNewChat, func(payload any) {
		received = payload.(ports.NewChat)
	})

	b.Publish(ports.EventNewChat, ports.NewChat{ProfileID: "p1", SessionID: "aws-s1"})

	if received.SessionID != "aws-s1" {
		t.Fatalf("unexpected payload %+v", received)
	}
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	b := New(zerolog.Nop())

	calls := 0
	unsubscribe := b.Subscribe(ports.EventNewChat, func(any) { calls++ })
	unsubscribe()
	unsubscribe()

	b.Publish(ports.EventNewChat, nil)
	if calls != 0 {
		t.Fatalf("expected no delivery after unsubscribe, got %d", calls)
	}
}

func TestBus_UnsubscribeDuringDelivery(t *testing.T) {
	b := New(zerolog.Nop())

	calls := 0
	var unsubscribe func()
	unsubscribe = b.Subscribe(ports.EventNewChat, func(any) {
		calls++
		unsubscribe()
	})

	b.Publish(ports.EventNewChat, nil)
	b.Publish(ports.EventNewChat, nil)

	if calls != 1 {
		t.Fatalf("expected a single delivery, got %d", calls)
	}
}

func TestBus_PublishWithoutSubscribersIsSafe(t *testing.T) {
	b := New(zerolog.Nop())
	b.Publish(ports.EventProviderChanged, ports.ProviderChanged{ProfileID: "p1"})
}
