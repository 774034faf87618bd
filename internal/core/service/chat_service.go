package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

const defaultTurnTimeout = 2 * time.Minute

// TraceSink receives request/response traces off the hot path. The queue
// dispatcher implements it.
type TraceSink interface {
	Enqueue(t ports.Trace)
}

// ChatService drives a single conversation turn: optimistic user-message
// insertion, loading placeholder, remote call, success/error
// reconciliation and thread upsert. One turn may be in flight per session
// at a time; there is no automatic retry.
type ChatService struct {
	threads   ports.ThreadRepository
	transport ports.ChatTransport
	auth      ports.AuthService
	traces    TraceSink
	logger    zerolog.Logger
	timeout   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewChatService(threads ports.ThreadRepository, transport ports.ChatTransport, auth ports.AuthService, traces TraceSink, logger zerolog.Logger, timeout time.Duration) *ChatService {
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}
	return &ChatService{
		threads:   threads,
		transport: transport,
		auth:      auth,
		traces:    traces,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
		inFlight:  make(map[string]struct{}),
	}
}

// SendTurn runs the turn protocol for one user message. A failed turn
// still upserts the thread so the attempt stays visible in history; the
// in-flight latch is released on every path.
func (s *ChatService) SendTurn(ctx context.Context, profileID string, in ports.TurnInput) (*ports.TurnResult, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, domain.ErrEmptyMessage
	}
	if in.SessionID == "" {
		in.SessionID = domain.NewSessionID(in.Provider)
	}

	if !s.acquire(in.SessionID) {
		return nil, domain.ErrTurnInFlight
	}
	defer s.release(in.SessionID)

	prior := s.priorMessages(ctx, profileID, in.SessionID)

	now := s.now()
	userMsg := domain.Message{
		ID:        uuid.NewString(),
		Content:   in.Message,
		Timestamp: now,
		Sender:    domain.SenderUser,
		Role:      "user",
	}
	// The placeholder id is derived from the user message id so the
	// resolved reply always replaces it, never sits next to it.
	placeholderID := userMsg.ID + "-pending"

	turnCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := s.now()
	resp, err := s.transport.SendChatMessage(turnCtx, ports.ChatRequest{
		SessionID:   in.SessionID,
		UserMessage: in.Message,
		History:     historyFor(prior),
		Provider:    in.Provider,
	})
	elapsed := s.now().Sub(started)

	if err != nil {
		if isAuthErr(err) {
			s.auth.ReportAuthFailure(ctx, profileID)
		}
		return s.concludeTurn(ctx, profileID, in, prior, userMsg, domain.Message{
			ID:        placeholderID,
			Content:   domain.UserMessage(err),
			Timestamp: s.now(),
			Sender:    domain.SenderSystem,
			Status:    domain.StatusError,
		}, elapsed, err)
	}

	return s.concludeTurn(ctx, profileID, in, prior, userMsg, domain.Message{
		ID:        placeholderID,
		Content:   resp.Response,
		Timestamp: s.now(),
		Sender:    domain.SenderSystem,
		Status:    domain.StatusSuccess,
		Role:      "assistant",
	}, elapsed, nil)
}

// concludeTurn replaces the loading placeholder with the reply, upserts
// the thread and records the trace. The thread is written on both the
// success and the error path.
func (s *ChatService) concludeTurn(ctx context.Context, profileID string, in ports.TurnInput, prior []domain.Message, userMsg, reply domain.Message, elapsed time.Duration, turnErr error) (*ports.TurnResult, error) {
	thread := domain.ChatThread{
		ID:          in.SessionID,
		SessionID:   in.SessionID,
		Title:       domain.Truncate(userMsg.Content, 50),
		LastMessage: lastMessagePreview(userMsg.Content, reply),
		Timestamp:   s.now(),
		Messages:    append(append([]domain.Message{}, prior...), userMsg, reply),
	}

	if err := s.threads.Upsert(ctx, profileID, thread); err != nil {
		s.logger.Error().Err(err).Str("session_id", in.SessionID).Msg("failed to upsert thread after turn")
	}

	if s.traces != nil {
		s.traces.Enqueue(ports.Trace{
			ProfileID: profileID,
			SessionID: in.SessionID,
			Provider:  in.Provider,
			Request:   userMsg.Content,
			Response:  reply.Content,
			Status:    reply.Status,
			Duration:  elapsed,
			Timestamp: s.now(),
		})
	}

	if turnErr != nil {
		s.logger.Warn().Err(turnErr).Str("session_id", in.SessionID).Str("provider", string(in.Provider)).Msg("chat turn failed")
	} else {
		s.logger.Info().Str("session_id", in.SessionID).Str("provider", string(in.Provider)).Dur("elapsed", elapsed).Msg("chat turn completed")
	}

	return &ports.TurnResult{
		Thread: &thread,
		Reply:  reply,
		Failed: turnErr != nil,
	}, nil
}

// priorMessages loads the conversation so far. Threads minted by this
// service use the session id as the thread id, but older records may
// only match on session_id, so both are checked.
func (s *ChatService) priorMessages(ctx context.Context, profileID, sessionID string) []domain.Message {
	threads, err := s.threads.List(ctx, profileID)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load prior thread, starting from empty history")
		return nil
	}
	for _, t := range threads {
		if t.ID == sessionID || t.SessionID == sessionID {
			return t.Messages
		}
	}
	return nil
}

func (s *ChatService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *ChatService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

func historyFor(msgs []domain.Message) []ports.HistoryEntry {
	history := make([]ports.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, ports.HistoryEntry{Role: m.HistoryRole(), Content: m.Content})
	}
	return history
}

func isAuthErr(err error) bool {
	return errors.Is(err, domain.ErrAuth) || errors.Is(err, domain.ErrAccountDeactivated)
}

// lastMessagePreview builds the composite thread preview showing both
// sides of the exchange, each truncated.
func lastMessagePreview(userText string, reply domain.Message) string {
	prefix := "You: " + domain.Truncate(userText, 30)
	if reply.Status == domain.StatusError {
		return prefix + " | Error: " + domain.Truncate(reply.Content, 50)
	}
	return prefix + " | AI: " + domain.Truncate(reply.Content, 50)
}
