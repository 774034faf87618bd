package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes chat turn traces to a fixed set of workers using
// consistent hashing on the session id, guaranteeing per-session write
// ordering in the audit collection.
type Dispatcher struct {
	workers []chan ports.Trace
	service ports.TraceService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.TraceService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Trace, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Trace, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a trace to the worker responsible for its session. The
// call never blocks: when the shard buffer is full the record is dropped
// and logged, so a saturated trace pipeline cannot stall a chat turn.
func (d *Dispatcher) Enqueue(t ports.Trace) {
	select {
	case d.workers[d.shardIndex(t.SessionID)] <- t:
	default:
		d.log.Warn().
			Str("session_id", t.SessionID).
			Msg("trace queue saturated, dropping record")
	}
}

// shardIndex maps a session id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Trace) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.Process(ctx, t); err != nil {
				d.log.Error().Err(err).
					Str("session_id", t.SessionID).
					Int("worker_id", id).
					Msg("trace processing failed")
			}
		}
	}
}
