package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// recordingService counts Process calls and can fail selected sessions.
type recordingService struct {
	mu        sync.Mutex
	processed []string
	failFor   string
	done      chan struct{}
}

func (s *recordingService) Process(_ context.Context, t ports.Trace) error {
	s.mu.Lock()
	s.processed = append(s.processed, t.SessionID)
	s.mu.Unlock()
	select {
	case s.done <- struct{}{}:
	default:
	}
	if t.SessionID == s.failFor {
		return errors.New("storage down")
	}
	return nil
}

func (s *recordingService) Recent(context.Context, string, int64) ([]ports.Trace, error) {
	return nil, nil
}

func (s *recordingService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed)
}

func waitFor(t *testing.T, done <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for trace %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_WorkerContinuesAfterStorageFailure(t *testing.T) {
	svc := &recordingService{failFor: "aws-bad", done: make(chan struct{}, 4)}
	d := NewDispatcher(1, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.Trace{SessionID: "aws-bad"})
	d.Enqueue(ports.Trace{SessionID: "aws-ok"})

	waitFor(t, svc.done, 2)
	if got := svc.count(); got != 2 {
		t.Fatalf("expected both traces processed, got %d", got)
	}
}

func TestDispatcher_EnqueueDropsWhenSaturated(t *testing.T) {
	// Workers never started, so the single shard buffer fills up and
	// every Enqueue past capacity must drop instead of blocking.
	d := NewDispatcher(1, &recordingService{done: make(chan struct{}, 1)}, zerolog.Nop())

	for i := 0; i < channelBuffer+10; i++ {
		d.Enqueue(ports.Trace{SessionID: "aws-s1"})
	}

	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected buffer capped at %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_ShardingIsStablePerSession(t *testing.T) {
	d := NewDispatcher(8, &recordingService{done: make(chan struct{}, 1)}, zerolog.Nop())

	first := d.shardIndex("gcp-abc123")
	for i := 0; i < 10; i++ {
		if idx := d.shardIndex("gcp-abc123"); idx != first {
			t.Fatalf("shard index changed: %d vs %d", idx, first)
		}
	}
}
