package ports

import (
	"context"
	"time"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// Trace is one request/response record surfaced by the log viewer.
type Trace struct {
	ProfileID string                `json:"profile_id" bson:"profile_id"`
	SessionID string                `json:"session_id" bson:"session_id"`
	Provider  domain.CloudProvider  `json:"provider" bson:"provider"`
	Request   string                `json:"request" bson:"request"`
	Response  string                `json:"response" bson:"response"`
	Status    domain.MessageStatus  `json:"status" bson:"status"`
	Duration  time.Duration         `json:"duration_ms" bson:"duration_ms"`
	Timestamp time.Time             `json:"timestamp" bson:"timestamp"`
}

// TraceRepository persists traces. Writes are best-effort: a failure is
// logged, never propagated into the chat turn that produced the trace.
type TraceRepository interface {
	Insert(ctx context.Context, t Trace) error
	ListRecent(ctx context.Context, profileID string, limit int64) ([]Trace, error)
}

// TraceService consumes trace records off the dispatcher workers and
// serves the log viewer.
type TraceService interface {
	Process(ctx context.Context, t Trace) error
	Recent(ctx context.Context, profileID string, limit int64) ([]Trace, error)
}
