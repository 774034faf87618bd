package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// PromptService serves the prompt catalog filtered per provider and owns
// the optimistic favorite toggle: the local favorites cache is updated
// and persisted before the server call, then reconciled against the
// server's favorite set on the next fetch.
type PromptService struct {
	api    ports.PromptAPI
	auth   ports.AuthService
	store  ports.ProfileStore
	logger zerolog.Logger
}

func NewPromptService(api ports.PromptAPI, auth ports.AuthService, store ports.ProfileStore, logger zerolog.Logger) *PromptService {
	return &PromptService{api: api, auth: auth, store: store, logger: logger}
}

// ListForProvider fetches the catalog, marks favorites, re-filters by
// provider (the backend has been seen returning prompts for all of them)
// and sorts favorites first. The server's favorite set reconciles the
// local cache.
func (s *PromptService) ListForProvider(ctx context.Context, profileID, category string, provider domain.CloudProvider, admin bool) ([]domain.Prompt, error) {
	token := s.auth.Token(ctx, profileID)

	var (
		prompts []domain.Prompt
		err     error
	)
	if admin {
		prompts, err = s.api.GetAllPromptsAdmin(ctx, token, category, provider)
	} else {
		prompts, err = s.api.GetPrompts(ctx, token, category, provider)
	}
	if err != nil {
		if isAuthErr(err) {
			s.auth.ReportAuthFailure(ctx, profileID)
		}
		return nil, err
	}

	favoriteIDs := s.serverFavorites(ctx, profileID, token)

	filtered := prompts[:0:0]
	for _, p := range prompts {
		if p.CloudProvider != provider {
			continue
		}
		p.IsFavorite = favoriteIDs[p.ID]
		filtered = append(filtered, p)
	}
	sortFavoritesFirst(filtered)
	return filtered, nil
}

// ToggleFavorite flips the prompt's favorite state locally, persists the
// cache, then tells the server. A server failure leaves the local state
// in place; the next fetch reconciles.
func (s *PromptService) ToggleFavorite(ctx context.Context, profileID, promptID string) (bool, error) {
	ids := s.cachedFavorites(ctx, profileID)

	favorited := true
	if _, ok := ids[promptID]; ok {
		delete(ids, promptID)
		favorited = false
	} else {
		ids[promptID] = struct{}{}
	}
	s.persistFavorites(ctx, profileID, ids)

	token := s.auth.Token(ctx, profileID)
	var err error
	if favorited {
		err = s.api.AddToFavorites(ctx, token, promptID)
	} else {
		err = s.api.RemoveFromFavorites(ctx, token, promptID)
	}
	if err != nil {
		if isAuthErr(err) {
			s.auth.ReportAuthFailure(ctx, profileID)
			return favorited, err
		}
		s.logger.Warn().Err(err).Str("prompt_id", promptID).Msg("favorite sync failed, keeping local state until next fetch")
	}
	return favorited, nil
}

func (s *PromptService) Create(ctx context.Context, profileID string, p domain.Prompt) (*domain.Prompt, error) {
	created, err := s.api.CreatePrompt(ctx, s.auth.Token(ctx, profileID), p)
	if err != nil && isAuthErr(err) {
		s.auth.ReportAuthFailure(ctx, profileID)
	}
	return created, err
}

func (s *PromptService) Update(ctx context.Context, profileID, promptID string, p domain.Prompt) (*domain.Prompt, error) {
	updated, err := s.api.UpdatePrompt(ctx, s.auth.Token(ctx, profileID), promptID, p)
	if err != nil && isAuthErr(err) {
		s.auth.ReportAuthFailure(ctx, profileID)
	}
	return updated, err
}

func (s *PromptService) Delete(ctx context.Context, profileID, promptID string) error {
	err := s.api.DeletePrompt(ctx, s.auth.Token(ctx, profileID), promptID)
	if err != nil && isAuthErr(err) {
		s.auth.ReportAuthFailure(ctx, profileID)
	}
	return err
}

// serverFavorites asks the server for the authoritative favorite set and
// refreshes the local cache with it. On failure the cache is the
// fallback.
func (s *PromptService) serverFavorites(ctx context.Context, profileID, token string) map[string]bool {
	favorites, err := s.api.GetFavoritePrompts(ctx, token)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("favorite fetch failed, using cached ids")
		ids := make(map[string]bool)
		for id := range s.cachedFavorites(ctx, profileID) {
			ids[id] = true
		}
		return ids
	}

	ids := make(map[string]bool, len(favorites))
	set := make(map[string]struct{}, len(favorites))
	for _, p := range favorites {
		ids[p.ID] = true
		set[p.ID] = struct{}{}
	}
	s.persistFavorites(ctx, profileID, set)
	return ids
}

func (s *PromptService) cachedFavorites(ctx context.Context, profileID string) map[string]struct{} {
	ids := make(map[string]struct{})
	raw, err := s.store.Get(ctx, profileID, ports.KeyFavoritePrompts)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to read favorites cache")
		}
		return ids
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("corrupt favorites cache, treating as empty")
		return ids
	}
	for _, id := range list {
		ids[id] = struct{}{}
	}
	return ids
}

func (s *PromptService) persistFavorites(ctx context.Context, profileID string, ids map[string]struct{}) {
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	sort.Strings(list)
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, profileID, ports.KeyFavoritePrompts, raw); err != nil {
		s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to persist favorites cache")
	}
}

// sortFavoritesFirst keeps catalog order within each group.
func sortFavoritesFirst(prompts []domain.Prompt) {
	sort.SliceStable(prompts, func(i, j int) bool {
		return prompts[i].IsFavorite && !prompts[j].IsFavorite
	})
}
