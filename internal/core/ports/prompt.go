package ports

import (
	"context"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// PromptAPI is the external prompt catalog backend. A 401 from any of
// these triggers the global session-expiry signal via the auth service's
// ReportAuthFailure hook, exactly once.
type PromptAPI interface {
	GetPrompts(ctx context.Context, token, category string, provider domain.CloudProvider) ([]domain.Prompt, error)
	GetAllPromptsAdmin(ctx context.Context, token, category string, provider domain.CloudProvider) ([]domain.Prompt, error)
	GetFavoritePrompts(ctx context.Context, token string) ([]domain.Prompt, error)
	AddToFavorites(ctx context.Context, token, promptID string) error
	RemoveFromFavorites(ctx context.Context, token, promptID string) error
	CreatePrompt(ctx context.Context, token string, p domain.Prompt) (*domain.Prompt, error)
	UpdatePrompt(ctx context.Context, token, promptID string, p domain.Prompt) (*domain.Prompt, error)
	DeletePrompt(ctx context.Context, token, promptID string) error
}

// PromptService filters the catalog per provider and owns the optimistic
// favorite toggle: local state is updated and persisted immediately, then
// reconciled against the server on the next fetch.
type PromptService interface {
	ListForProvider(ctx context.Context, profileID, category string, provider domain.CloudProvider, admin bool) ([]domain.Prompt, error)
	ToggleFavorite(ctx context.Context, profileID, promptID string) (favorited bool, err error)
	Create(ctx context.Context, profileID string, p domain.Prompt) (*domain.Prompt, error)
	Update(ctx context.Context, profileID, promptID string, p domain.Prompt) (*domain.Prompt, error)
	Delete(ctx context.Context, profileID, promptID string) error
}
