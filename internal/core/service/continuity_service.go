package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ContinuityService decides which thread seeds the chat view on each
// navigation. Three signals compete, each consulted only when the
// previous is absent or invalid:
//
//  1. a one-shot handoff record written by the history page — consumed
//     (deleted) immediately regardless of validity;
//  2. a thread id embedded in the URL, resolved against the repository;
//  3. neither — a fresh session with a newly minted identifier.
type ContinuityService struct {
	threads  ports.ThreadRepository
	store    ports.ProfileStore
	provider ports.ProviderService
	bus      ports.Bus
	logger   zerolog.Logger
}

func NewContinuityService(threads ports.ThreadRepository, store ports.ProfileStore, provider ports.ProviderService, bus ports.Bus, logger zerolog.Logger) *ContinuityService {
	return &ContinuityService{threads: threads, store: store, provider: provider, bus: bus, logger: logger}
}

// Resolve produces the thread (or fresh session) that becomes the active
// conversation. Resolving the same URL id twice yields the same thread
// and leaves the repository unchanged.
func (s *ContinuityService) Resolve(ctx context.Context, profileID, urlThreadID string) (*ports.Resolution, error) {
	if t := s.consumeHandoff(ctx, profileID); t != nil {
		return s.resolved(ctx, profileID, t, ports.SourceHandoff), nil
	}

	if urlThreadID != "" {
		t, err := s.findThread(ctx, profileID, urlThreadID)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return s.resolved(ctx, profileID, t, ports.SourceURL), nil
		}
		s.logger.Info().Str("profile_id", profileID).Str("thread_id", urlThreadID).Msg("thread id from URL not found, starting fresh session")
	}

	return s.fresh(ctx, profileID), nil
}

// NewSession abandons whatever session is current, mints a new one and
// broadcasts the new-chat signal so sibling views reset themselves.
func (s *ContinuityService) NewSession(ctx context.Context, profileID string) (*ports.Resolution, error) {
	res := s.fresh(ctx, profileID)
	s.bus.Publish(ports.EventNewChat, ports.NewChat{ProfileID: profileID, SessionID: res.SessionID})
	return res, nil
}

// consumeHandoff reads and deletes the one-shot handoff record. An
// invalid record is discarded silently; the repository is untouched and
// resolution falls through to the URL signal.
func (s *ContinuityService) consumeHandoff(ctx context.Context, profileID string) *domain.ChatThread {
	raw, err := s.store.Get(ctx, profileID, ports.KeySelectedThread)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to read thread handoff record")
		}
		return nil
	}
	if err := s.store.Delete(ctx, profileID, ports.KeySelectedThread); err != nil && !errors.Is(err, ports.ErrNotFound) {
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to consume thread handoff record")
	}

	var t domain.ChatThread
	if err := json.Unmarshal(raw, &t); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("corrupt thread handoff record, discarding")
		return nil
	}
	if !t.Valid() {
		s.logger.Warn().Str("profile_id", profileID).Str("thread_id", t.ID).Msg("handoff thread missing required identifiers, discarding")
		return nil
	}
	return &t
}

func (s *ContinuityService) findThread(ctx context.Context, profileID, threadID string) (*domain.ChatThread, error) {
	threads, err := s.threads.List(ctx, profileID)
	if err != nil {
		return nil, err
	}
	for i := range threads {
		if threads[i].ID == threadID && threads[i].Valid() {
			return &threads[i], nil
		}
	}
	return nil, nil
}

func (s *ContinuityService) resolved(ctx context.Context, profileID string, t *domain.ChatThread, source string) *ports.Resolution {
	res := &ports.Resolution{
		Source:       source,
		Thread:       t,
		SessionID:    t.SessionID,
		CanonicalURL: "/chat?thread=" + t.ID,
	}
	if hint, ok := t.ProviderHint(); ok {
		res.ProviderHint = &hint
	}
	s.rememberSession(ctx, profileID, t.SessionID)
	return res
}

func (s *ContinuityService) fresh(ctx context.Context, profileID string) *ports.Resolution {
	provider := s.provider.Get(ctx, profileID)
	sessionID := domain.NewSessionID(provider)
	s.rememberSession(ctx, profileID, sessionID)
	return &ports.Resolution{
		Source:       ports.SourceNew,
		SessionID:    sessionID,
		CanonicalURL: "/chat",
	}
}

func (s *ContinuityService) rememberSession(ctx context.Context, profileID, sessionID string) {
	if err := s.store.Set(ctx, profileID, ports.KeyCurrentSession, []byte(sessionID)); err != nil {
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to persist current session id")
	}
}
