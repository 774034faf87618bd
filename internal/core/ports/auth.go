package ports

import (
	"context"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// AuthAPI is the external authentication backend, consumed over HTTP.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Register(ctx context.Context, name, email, password string) (token string, user *domain.User, err error)
	GetProfile(ctx context.Context, token string) (*domain.User, error)
}

// AuthService owns the per-profile authentication state machine: token
// lifecycle, the notion of "current user", and expiry broadcast.
type AuthService interface {
	// State returns the machine's current state without performing I/O.
	State(profileID string) domain.AuthState
	// CurrentUser is a synchronous read of the in-memory user cache.
	CurrentUser(profileID string) *domain.User
	// Token returns the stored bearer token, or "" when absent.
	Token(ctx context.Context, profileID string) string

	Login(ctx context.Context, profileID, email, password string) (*domain.User, error)
	Register(ctx context.Context, profileID, name, email, password string) (*domain.User, error)

	// RefreshSession re-validates the stored token against the auth
	// backend. Every call path reaches a terminal state even when the
	// network call fails.
	RefreshSession(ctx context.Context, profileID string) (*domain.User, error)

	// OnAuthStateChange registers a listener invoked on every transition
	// to a terminal state. The returned unsubscribe is idempotent.
	OnAuthStateChange(profileID string, fn func(*domain.User)) (unsubscribe func())

	Logout(ctx context.Context, profileID string)

	// ReportAuthFailure is the shared 401 hook. It broadcasts the
	// session-expired signal exactly once per expiry event.
	ReportAuthFailure(ctx context.Context, profileID string)
}
