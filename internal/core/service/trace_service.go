package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/ports"
)

const traceWriteTimeout = 5 * time.Second

// TraceService persists request/response traces for the log viewer.
// Writes come in off the dispatcher workers; a storage failure is logged
// and dropped so tracing can never fail a chat turn.
type traceService struct {
	repo ports.TraceRepository
	log  zerolog.Logger
}

func NewTraceService(repo ports.TraceRepository, log zerolog.Logger) ports.TraceService {
	return &traceService{repo: repo, log: log}
}

func (s *traceService) Process(ctx context.Context, t ports.Trace) error {
	writeCtx, cancel := context.WithTimeout(ctx, traceWriteTimeout)
	defer cancel()

	if err := s.repo.Insert(writeCtx, t); err != nil {
		s.log.Warn().Err(err).Str("session_id", t.SessionID).Msg("trace write failed, dropping record")
		return err
	}
	return nil
}

func (s *traceService) Recent(ctx context.Context, profileID string, limit int64) ([]ports.Trace, error) {
	return s.repo.ListRecent(ctx, profileID, limit)
}
