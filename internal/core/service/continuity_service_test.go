package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

func newContinuitySvc(store *memStore, bus *stubBus) *ContinuityService {
	threads := NewThreadService(store, zerolog.Nop())
	providers := NewProviderService(store, bus, zerolog.Nop())
	return NewContinuityService(threads, store, providers, bus, zerolog.Nop())
}

func seedHandoff(t *testing.T, store *memStore, thread domain.ChatThread) {
	t.Helper()
	raw, err := json.Marshal(thread)
	if err != nil {
		t.Fatalf("marshal handoff: %v", err)
	}
	store.seed(testProfile, ports.KeySelectedThread, raw)
}

func TestContinuity_HandoffWinsOverURL(t *testing.T) {
	store := newMemStore()
	handoff := domain.ChatThread{ID: "h1", SessionID: "gcp-abc", Title: "from history", Timestamp: time.Now()}
	seedHandoff(t, store, handoff)
	seedThreads(t, store, []domain.ChatThread{{ID: "u1", SessionID: "aws-u1", Timestamp: time.Now()}})

	svc := newContinuitySvc(store, &stubBus{})
	res, err := svc.Resolve(context.Background(), testProfile, "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if res.Source != ports.SourceHandoff {
		t.Fatalf("expected handoff source, got %q", res.Source)
	}
	if res.Thread == nil || res.Thread.ID != "h1" {
		t.Fatalf("expected handoff thread, got %+v", res.Thread)
	}
	if res.CanonicalURL != "/chat?thread=h1" {
		t.Fatalf("unexpected canonical URL %q", res.CanonicalURL)
	}
	if res.ProviderHint == nil || *res.ProviderHint != domain.ProviderGCP {
		t.Fatalf("expected gcp provider hint, got %v", res.ProviderHint)
	}
}

func TestContinuity_HandoffConsumedEvenWhenInvalid(t *testing.T) {
	store := newMemStore()
	// Missing session_id makes the record invalid.
	seedHandoff(t, store, domain.ChatThread{ID: "h1"})

	svc := newContinuitySvc(store, &stubBus{})
	res, err := svc.Resolve(context.Background(), testProfile, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if res.Source != ports.SourceNew {
		t.Fatalf("expected fallthrough to fresh session, got %q", res.Source)
	}
	if _, ok := store.stored(testProfile, ports.KeySelectedThread); ok {
		t.Fatal("expected invalid handoff record to be consumed")
	}
}

func TestContinuity_URLResolutionIsIdempotent(t *testing.T) {
	store := newMemStore()
	seedThreads(t, store, []domain.ChatThread{{ID: "u1", SessionID: "aws-u1", Timestamp: time.Now()}})

	svc := newContinuitySvc(store, &stubBus{})
	first, err := svc.Resolve(context.Background(), testProfile, "u1")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := svc.Resolve(context.Background(), testProfile, "u1")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}

	if first.Source != ports.SourceURL || second.Source != ports.SourceURL {
		t.Fatalf("expected url source both times, got %q then %q", first.Source, second.Source)
	}
	if first.Thread.ID != second.Thread.ID {
		t.Fatal("expected identical resolution on repeat")
	}
}

func TestContinuity_UnknownURLThreadFallsBackToFresh(t *testing.T) {
	store := newMemStore()
	svc := newContinuitySvc(store, &stubBus{})

	res, err := svc.Resolve(context.Background(), testProfile, "missing")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Source != ports.SourceNew {
		t.Fatalf("expected fresh session, got %q", res.Source)
	}
	if !strings.HasPrefix(res.SessionID, "aws-") {
		t.Fatalf("expected default provider prefix, got %q", res.SessionID)
	}
	if res.CanonicalURL != "/chat" {
		t.Fatalf("unexpected canonical URL %q", res.CanonicalURL)
	}
}

func TestContinuity_FreshSessionUsesSavedProvider(t *testing.T) {
	store := newMemStore()
	store.seed(testProfile, ports.KeySelectedProvider, []byte("azure"))

	svc := newContinuitySvc(store, &stubBus{})
	res, err := svc.Resolve(context.Background(), testProfile, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.HasPrefix(res.SessionID, "azure-") {
		t.Fatalf("expected azure prefix, got %q", res.SessionID)
	}

	raw, ok := store.stored(testProfile, ports.KeyCurrentSession)
	if !ok || string(raw) != res.SessionID {
		t.Fatalf("expected current session persisted, got %q", raw)
	}
}

func TestContinuity_NewSessionBroadcasts(t *testing.T) {
	store := newMemStore()
	bus := &stubBus{}
	svc := newContinuitySvc(store, bus)

	res, err := svc.NewSession(context.Background(), testProfile)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if got := bus.count(ports.EventNewChat); got != 1 {
		t.Fatalf("expected 1 new-chat broadcast, got %d", got)
	}
	payload := bus.payloads[len(bus.payloads)-1].(ports.NewChat)
	if payload.SessionID != res.SessionID {
		t.Fatalf("broadcast session %q does not match resolution %q", payload.SessionID, res.SessionID)
	}
}
