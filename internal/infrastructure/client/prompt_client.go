package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// PromptClient implements ports.PromptAPI against the prompt catalog
// backend.
type PromptClient struct {
	baseClient
}

// NewPromptClient creates a PromptClient for the given base URL.
func NewPromptClient(baseURL string, timeout time.Duration, log zerolog.Logger) ports.PromptAPI {
	return &PromptClient{baseClient: newBaseClient(baseURL, timeout, log)}
}

func (c *PromptClient) listPrompts(ctx context.Context, path, token, category string, provider domain.CloudProvider) ([]domain.Prompt, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if provider != "" {
		q.Set("cloud_provider", string(provider))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	raw, status, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, raw); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	var prompts []domain.Prompt
	if err := json.Unmarshal(raw, &prompts); err != nil {
		return nil, fmt.Errorf("list prompts: %w", domain.ErrMalformedResponse)
	}
	return prompts, nil
}

// GetPrompts returns the catalog visible to a regular account.
func (c *PromptClient) GetPrompts(ctx context.Context, token, category string, provider domain.CloudProvider) ([]domain.Prompt, error) {
	return c.listPrompts(ctx, "/api/prompts", token, category, provider)
}

// GetAllPromptsAdmin returns the full catalog, including other accounts'
// private prompts. Requires an administrator token.
func (c *PromptClient) GetAllPromptsAdmin(ctx context.Context, token, category string, provider domain.CloudProvider) ([]domain.Prompt, error) {
	return c.listPrompts(ctx, "/api/prompts/all", token, category, provider)
}

// GetFavoritePrompts returns the account's favorited prompts.
func (c *PromptClient) GetFavoritePrompts(ctx context.Context, token string) ([]domain.Prompt, error) {
	raw, status, err := c.do(ctx, http.MethodGet, "/api/prompts/favorites", token, nil)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, raw); err != nil {
		return nil, fmt.Errorf("get favorites: %w", err)
	}

	var prompts []domain.Prompt
	if err := json.Unmarshal(raw, &prompts); err != nil {
		return nil, fmt.Errorf("get favorites: %w", domain.ErrMalformedResponse)
	}
	return prompts, nil
}

// AddToFavorites marks a prompt as a favorite server-side.
func (c *PromptClient) AddToFavorites(ctx context.Context, token, promptID string) error {
	body := map[string]string{"prompt_id": promptID}
	raw, status, err := c.do(ctx, http.MethodPost, "/api/prompts/favorites", token, body)
	if err != nil {
		return err
	}
	if err := classifyStatus(status, raw); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFromFavorites clears a favorite server-side.
func (c *PromptClient) RemoveFromFavorites(ctx context.Context, token, promptID string) error {
	raw, status, err := c.do(ctx, http.MethodDelete, "/api/prompts/favorites/"+url.PathEscape(promptID), token, nil)
	if err != nil {
		return err
	}
	if err := classifyStatus(status, raw); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// CreatePrompt adds a prompt to the catalog.
func (c *PromptClient) CreatePrompt(ctx context.Context, token string, p domain.Prompt) (*domain.Prompt, error) {
	raw, status, err := c.do(ctx, http.MethodPost, "/api/prompts", token, p)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, raw); err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}

	var created domain.Prompt
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("create prompt: %w", domain.ErrMalformedResponse)
	}
	return &created, nil
}

// UpdatePrompt replaces a prompt's fields.
func (c *PromptClient) UpdatePrompt(ctx context.Context, token, promptID string, p domain.Prompt) (*domain.Prompt, error) {
	raw, status, err := c.do(ctx, http.MethodPut, "/api/prompts/"+url.PathEscape(promptID), token, p)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, raw); err != nil {
		return nil, fmt.Errorf("update prompt: %w", err)
	}

	var updated domain.Prompt
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, fmt.Errorf("update prompt: %w", domain.ErrMalformedResponse)
	}
	return &updated, nil
}

// DeletePrompt removes a prompt from the catalog.
func (c *PromptClient) DeletePrompt(ctx context.Context, token, promptID string) error {
	raw, status, err := c.do(ctx, http.MethodDelete, "/api/prompts/"+url.PathEscape(promptID), token, nil)
	if err != nil {
		return err
	}
	if err := classifyStatus(status, raw); err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	return nil
}
