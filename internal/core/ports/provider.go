package ports

import (
	"context"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// ProviderService resolves which cloud provider is active for a profile,
// merging per-user access restrictions, the saved preference, and the
// hardcoded default, and broadcasts changes on the bus.
type ProviderService interface {
	// Resolve applies the mount-time resolution order: access map, then
	// saved preference if accessible, then first accessible provider,
	// then the default. The result is persisted and, when it differs from
	// the saved preference, broadcast.
	Resolve(ctx context.Context, profileID string, access domain.ProviderAccess) (domain.CloudProvider, error)
	// Get returns the saved preference, falling back to the default.
	Get(ctx context.Context, profileID string) domain.CloudProvider
	// Set persists an explicit provider switch and broadcasts it.
	Set(ctx context.Context, profileID string, p domain.CloudProvider, access domain.ProviderAccess) error
}
