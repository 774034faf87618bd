package ports

import (
	"context"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// HistoryEntry is one prior conversation exchange in the wire format the
// chat backends accept.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single conversation turn handed to the transport.
// Provider-specific request shaping is the transport's responsibility.
type ChatRequest struct {
	SessionID   string
	UserMessage string
	History     []HistoryEntry
	Provider    domain.CloudProvider
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// ChatTransport is the external chat backend, consumed over HTTP. A
// request exceeding the turn deadline fails with domain.ErrTimeout,
// distinct from domain.ErrNetwork.
type ChatTransport interface {
	SendChatMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// TurnInput is one user-message-in round trip request.
type TurnInput struct {
	SessionID string
	Message   string
	Provider  domain.CloudProvider
}

// TurnResult reports a completed turn. Failed turns still carry the
// upserted thread so the attempt is visible in history.
type TurnResult struct {
	Thread *domain.ChatThread
	Reply  domain.Message
	Failed bool
}

// ChatService drives conversation turns: optimistic user-message
// insertion, loading placeholder, remote call, reconciliation, thread
// upsert. One turn may be in flight per session at a time.
type ChatService interface {
	SendTurn(ctx context.Context, profileID string, in TurnInput) (*TurnResult, error)
}
