package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ProviderService resolves which cloud provider is active for a profile
// and broadcasts changes so prompt filters and chat routing re-fetch
// without being wired to each other.
//
// There is deliberately no request sequencing across switches: two rapid
// switches may leave the first provider's prompts visible if its fetch
// resolves after the second's. Consumers clear their caches on the
// broadcast, which narrows but does not close that window.
type ProviderService struct {
	store  ports.ProfileStore
	bus    ports.Bus
	logger zerolog.Logger
}

func NewProviderService(store ports.ProfileStore, bus ports.Bus, logger zerolog.Logger) *ProviderService {
	return &ProviderService{store: store, bus: bus, logger: logger}
}

// Resolve applies the mount-time resolution order: saved preference if
// the user has access to it, else the first provider they may use, else
// the hardcoded default. The result is persisted and broadcast when it
// differs from what was saved.
func (s *ProviderService) Resolve(ctx context.Context, profileID string, access domain.ProviderAccess) (domain.CloudProvider, error) {
	saved, hadSaved := s.saved(ctx, profileID)

	chosen := domain.DefaultProvider
	switch {
	case hadSaved && access.Allows(saved):
		chosen = saved
	case access != nil:
		if first, ok := access.First(); ok {
			chosen = first
		}
	case hadSaved:
		chosen = saved
	}

	if err := s.store.Set(ctx, profileID, ports.KeySelectedProvider, []byte(chosen)); err != nil {
		return "", err
	}
	if !hadSaved || chosen != saved {
		s.logger.Info().Str("profile_id", profileID).Str("provider", string(chosen)).Msg("active provider resolved")
		s.bus.Publish(ports.EventProviderChanged, ports.ProviderChanged{ProfileID: profileID, Provider: chosen})
	}
	return chosen, nil
}

// Get returns the saved preference, or the default when none is stored.
func (s *ProviderService) Get(ctx context.Context, profileID string) domain.CloudProvider {
	if saved, ok := s.saved(ctx, profileID); ok {
		return saved
	}
	return domain.DefaultProvider
}

// Set persists an explicit provider switch and broadcasts it. Switching
// to a provider the user has no access to is rejected.
func (s *ProviderService) Set(ctx context.Context, profileID string, p domain.CloudProvider, access domain.ProviderAccess) error {
	if !p.Valid() {
		return domain.ErrProviderForbidden
	}
	if !access.Allows(p) {
		return domain.ErrProviderForbidden
	}

	current, _ := s.saved(ctx, profileID)
	if err := s.store.Set(ctx, profileID, ports.KeySelectedProvider, []byte(p)); err != nil {
		return err
	}
	if p != current {
		s.logger.Info().Str("profile_id", profileID).Str("provider", string(p)).Msg("provider switched")
		s.bus.Publish(ports.EventProviderChanged, ports.ProviderChanged{ProfileID: profileID, Provider: p})
	}
	return nil
}

func (s *ProviderService) saved(ctx context.Context, profileID string) (domain.CloudProvider, bool) {
	raw, err := s.store.Get(ctx, profileID, ports.KeySelectedProvider)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to read provider preference")
		}
		return "", false
	}
	return domain.ParseProvider(string(raw))
}
