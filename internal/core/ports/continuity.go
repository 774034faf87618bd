package ports

import (
	"context"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// Resolution sources, in precedence order.
const (
	SourceHandoff = "handoff"
	SourceURL     = "url"
	SourceNew     = "new"
)

// Resolution is the outcome of deciding which thread seeds the chat view.
// CanonicalURL embeds the chosen thread id so a refresh re-resolves to
// the same thread from the URL alone; clients rewrite to it without
// creating a history entry. For fresh sessions Thread is nil and
// SessionID carries the newly minted identifier.
type Resolution struct {
	Source       string                `json:"source"`
	Thread       *domain.ChatThread    `json:"thread,omitempty"`
	SessionID    string                `json:"session_id"`
	CanonicalURL string                `json:"canonical_url"`
	ProviderHint *domain.CloudProvider `json:"provider_hint,omitempty"`
}

// ContinuityService reconciles the three competing signals on navigation
// into the chat view: a one-shot handoff record, a thread id in the URL,
// and the absence of both.
type ContinuityService interface {
	Resolve(ctx context.Context, profileID, urlThreadID string) (*Resolution, error)
	// NewSession abandons the current session and mints a fresh one,
	// broadcasting the new-chat signal.
	NewSession(ctx context.Context, profileID string) (*Resolution, error)
}
